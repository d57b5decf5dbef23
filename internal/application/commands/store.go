package commands

import (
	"time"

	"focuslist/internal/application"
	"focuslist/internal/domain"
)

// Clock returns the current time. Commands default to time.Now.
type Clock func() time.Time

func (c Clock) today() string {
	if c == nil {
		return domain.Today(time.Now())
	}
	return domain.Today(c())
}

// IDGenerator returns a fresh canonical id. Commands default to domain.NewID.
type IDGenerator func() string

func (g IDGenerator) next() string {
	if g == nil {
		return domain.NewID()
	}
	return g()
}

func capacityLimit(s domain.Settings) int {
	if s.MaxImmediate < 1 {
		return domain.DefaultMaxImmediate
	}
	return s.MaxImmediate
}

func capacityError(s domain.Settings, title string) error {
	return &application.CapacityError{
		Section: domain.SectionImmediate,
		Limit:   capacityLimit(s),
		Title:   title,
	}
}

// CompletionReflector writes a task's completion state back to the note the
// task was imported from. Reports whether the note changed.
type CompletionReflector func(t domain.Task) (bool, error)
