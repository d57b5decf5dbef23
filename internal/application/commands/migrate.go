package commands

import (
	"context"
	"fmt"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// MigrateIDsResult contains the ids that were rewritten
type MigrateIDsResult struct {
	Changed map[string]string
	Message string
}

// MigrateIDsCommand converts legacy ids to canonical uuids
type MigrateIDsCommand struct {
	repo  ports.FocusRepository
	NewID IDGenerator
}

// NewMigrateIDsCommand creates a new MigrateIDsCommand
func NewMigrateIDsCommand(repo ports.FocusRepository) *MigrateIDsCommand {
	return &MigrateIDsCommand{repo: repo}
}

// Execute rewrites legacy ids; a document with only canonical ids is left untouched
func (c *MigrateIDsCommand) Execute(ctx context.Context) (*MigrateIDsResult, error) {
	result := &MigrateIDsResult{}
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		assigned := d.AssignMissingIDs(c.NewID.next)
		result.Changed = d.MigrateIDs(c.NewID.next)
		return assigned > 0 || len(result.Changed) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	result.Message = fmt.Sprintf("Migrated %d ids", len(result.Changed))
	return result, nil
}
