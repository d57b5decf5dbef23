package remotesync

import (
	"context"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// Repository decorates a FocusRepository so that every successful save is
// pushed to the remote store while a session is live
type Repository struct {
	ports.FocusRepository
	engine *Engine
}

// Update applies fn and pushes when it changed the document
func (r *Repository) Update(ctx context.Context, fn ports.UpdateFunc) (*domain.FocusData, error) {
	changed := false
	d, err := r.FocusRepository.Update(ctx, func(d *domain.FocusData) (bool, error) {
		c, err := fn(d)
		changed = c
		return c, err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		r.engine.afterSave(ctx)
	}
	return d, nil
}

// Replace overwrites the document and pushes it
func (r *Repository) Replace(ctx context.Context, d *domain.FocusData) error {
	if err := r.FocusRepository.Replace(ctx, d); err != nil {
		return err
	}
	r.engine.afterSave(ctx)
	return nil
}
