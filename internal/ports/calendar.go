package ports

import (
	"context"

	"focuslist/internal/domain"
)

// CalendarClient stores one reminder per dated task, keyed by UID
type CalendarClient interface {
	List(ctx context.Context) ([]domain.Reminder, error)
	Upsert(ctx context.Context, r domain.Reminder) error
	Delete(ctx context.Context, uid string) error
}
