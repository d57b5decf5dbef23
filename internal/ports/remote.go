package ports

import (
	"context"
	"errors"

	"focuslist/internal/domain"
)

var (
	// ErrAuthFailed means the credentials were rejected or no session exists
	ErrAuthFailed = errors.New("remote authentication failed")

	// ErrPrecondition means a write conflicted with the remote state and can be retried later
	ErrPrecondition = errors.New("remote precondition failed")
)

// Credentials identify a user of the remote store
type Credentials struct {
	Email string
	Token string
}

// RemoteStore is the relational store that mirrors the focus document
type RemoteStore interface {
	// Authenticate opens a session for the user and returns the user id
	Authenticate(ctx context.Context, creds Credentials) (string, error)

	// Pull reads the full state of the user; habit completions are read for today
	Pull(ctx context.Context, today string) (domain.RemoteSnapshot, error)

	// Push upserts the snapshot, replaces today's habit completions and
	// deletes the given ids
	Push(ctx context.Context, snap domain.RemoteSnapshot, deletes domain.SnapshotIDs, today string) error

	// Subscribe delivers a signal whenever another client changes the user's data.
	// The channel closes when ctx is done.
	Subscribe(ctx context.Context) (<-chan struct{}, error)

	Close() error
}
