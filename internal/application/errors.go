package application

import (
	"errors"
	"fmt"

	"focuslist/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrCapacity         = errors.New("section is full")
	ErrHabitLimit       = errors.New("habit limit reached")
	ErrInvalidOperation = errors.New("invalid operation")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CapacityError reports a task that would overfill the immediate section.
// It is user-correctable: nothing was changed.
type CapacityError struct {
	Section domain.Section
	Limit   int
	Title   string
}

func (e *CapacityError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("%s is full (%d tasks)", e.Section.Title(), e.Limit)
	}
	return fmt.Sprintf("cannot add %q: %s is full (%d tasks)", e.Title, e.Section.Title(), e.Limit)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// RemoteError wraps a failure talking to the remote store
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
