// Package sqlite implements the remote store on a shared SQLite database.
// Every client opens the same file; the revisions table doubles as the
// change feed that other clients poll.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"focuslist/internal/config"
	"focuslist/internal/ports"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultPollInterval is how often Subscribe checks the change feed
const DefaultPollInterval = time.Second

// Store implements ports.RemoteStore
type Store struct {
	db       *sql.DB
	clientID string

	// PollInterval paces Subscribe
	PollInterval time.Duration

	mu     sync.RWMutex
	userID string
}

// Ensure Store implements RemoteStore
var _ ports.RemoteStore = (*Store)(nil)

// Open opens (creating if needed) the database and runs migrations
func Open(path string) (*Store, error) {
	path = config.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL lets several clients read while one writes
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		db:           db,
		clientID:     uuid.NewString(),
		PollInterval: DefaultPollInterval,
	}, nil
}

func migrate(db *sql.DB) error {
	// goose logs to stdout, which would corrupt the TUI
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.Up(db, "migrations")
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Authenticate signs the user in, registering the email on first use
func (s *Store) Authenticate(ctx context.Context, creds ports.Credentials) (string, error) {
	if creds.Email == "" || creds.Token == "" {
		return "", fmt.Errorf("%w: email and token are required", ports.ErrAuthFailed)
	}

	var id, token string
	err := s.db.QueryRowContext(ctx, `SELECT id, token FROM users WHERE email = ?`, creds.Email).Scan(&id, &token)
	switch {
	case err == sql.ErrNoRows:
		id = uuid.NewString()
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO users (id, email, token) VALUES (?, ?, ?)`, id, creds.Email, creds.Token); err != nil {
			return "", fmt.Errorf("failed to register user: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("failed to look up user: %w", err)
	case token != creds.Token:
		return "", fmt.Errorf("%w: wrong token for %s", ports.ErrAuthFailed, creds.Email)
	}

	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
	return id, nil
}

func (s *Store) user() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == "" {
		return "", fmt.Errorf("%w: not signed in", ports.ErrAuthFailed)
	}
	return s.userID, nil
}
