package ports

import (
	"context"

	"focuslist/internal/domain"
)

// UpdateFunc mutates a freshly loaded document and reports whether anything changed
type UpdateFunc func(d *domain.FocusData) (changed bool, err error)

// FocusRepository persists the focus document.
// Every mutation goes through Update so it works on the latest saved state.
type FocusRepository interface {
	// Load decodes the current document; a missing document yields an empty one
	Load(ctx context.Context) (*domain.FocusData, error)

	// Update loads the latest document, applies fn and saves when fn reports a change.
	// It returns the document as saved (or as loaded, when nothing changed).
	Update(ctx context.Context, fn UpdateFunc) (*domain.FocusData, error)

	// Replace overwrites the document wholesale
	Replace(ctx context.Context, d *domain.FocusData) error

	// Path returns the vault-relative path of the document
	Path() string
}
