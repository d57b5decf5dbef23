package commands

import (
	"context"
	"fmt"

	"focuslist/internal/application"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

func requireID(field, id string) error {
	return application.ValidateRequired(field, id)
}

// DeleteTaskResult contains the result of deleting a task
type DeleteTaskResult struct {
	Found   bool
	Task    domain.Task
	Message string
}

// DeleteTaskCommand hard-deletes a task from an active section or the archive
type DeleteTaskCommand struct {
	repo ports.FocusRepository
	ID   string
}

// NewDeleteTaskCommand creates a new DeleteTaskCommand
func NewDeleteTaskCommand(repo ports.FocusRepository, id string) *DeleteTaskCommand {
	return &DeleteTaskCommand{repo: repo, ID: id}
}

// Validate checks the task id
func (c *DeleteTaskCommand) Validate() error {
	return requireID("taskID", c.ID)
}

// Execute deletes the task
func (c *DeleteTaskCommand) Execute(ctx context.Context) (*DeleteTaskResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	result := &DeleteTaskResult{}
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		result.Task, result.Found = d.RemoveTask(c.ID)
		return result.Found, nil
	})
	if err != nil {
		return nil, err
	}
	if result.Found {
		result.Message = fmt.Sprintf("Deleted %q", result.Task.Title)
	} else {
		result.Message = "Task no longer exists"
	}
	return result, nil
}
