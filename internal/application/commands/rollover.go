package commands

import (
	"context"
	"fmt"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// RolloverResult contains the result of a weekly rollover
type RolloverResult struct {
	RolledOver bool
	Moved      int
	Message    string
}

// RolloverCommand carries unfinished work into the new week
type RolloverCommand struct {
	repo     ports.FocusRepository
	settings domain.Settings

	// Force rolls over even when weekOf is in the current week
	Force bool
	Now   Clock
}

// NewRolloverCommand creates a new RolloverCommand
func NewRolloverCommand(repo ports.FocusRepository, settings domain.Settings) *RolloverCommand {
	return &RolloverCommand{repo: repo, settings: settings}
}

// Execute rolls over when the document belongs to an earlier week (or when forced)
func (c *RolloverCommand) Execute(ctx context.Context) (*RolloverResult, error) {
	today := c.Now.today()
	result := &RolloverResult{}

	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		if !c.Force && !d.NeedsRollover(today) {
			return false, nil
		}
		result.RolledOver = true
		result.Moved = d.Rollover(today, c.settings.RolloverImmediate, c.settings.RolloverThisWeek)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if result.RolledOver {
		result.Message = fmt.Sprintf("New week: moved %d unfinished tasks", result.Moved)
	} else {
		result.Message = "Already rolled over this week"
	}
	return result, nil
}
