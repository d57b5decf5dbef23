package commands

import (
	"context"
	"fmt"

	"focuslist/internal/application"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// MoveTaskResult contains the result of moving a task
type MoveTaskResult struct {
	Found   bool
	Task    domain.Task
	From    domain.Section
	Message string
}

// MoveTaskCommand moves an active task to the end of another section
type MoveTaskCommand struct {
	repo     ports.FocusRepository
	settings domain.Settings
	ID       string
	To       domain.Section
}

// NewMoveTaskCommand creates a new MoveTaskCommand
func NewMoveTaskCommand(repo ports.FocusRepository, settings domain.Settings, id string, to domain.Section) *MoveTaskCommand {
	return &MoveTaskCommand{repo: repo, settings: settings, ID: id, To: to}
}

// Validate checks the move
func (c *MoveTaskCommand) Validate() error {
	if err := requireID("taskID", c.ID); err != nil {
		return err
	}
	return application.ValidateSection("section", c.To)
}

// Execute moves the task; moving into a full immediate section is rejected
func (c *MoveTaskCommand) Execute(ctx context.Context) (*MoveTaskResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	result := &MoveTaskResult{}

	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		ref, task, ok := d.FindTask(c.ID)
		if !ok || ref.Archived() {
			return false, nil
		}
		result.Found = true
		result.From = task.Section
		if task.Section == c.To {
			result.Task = *task
			return false, nil
		}
		if !task.Completed && !d.HasRoom(c.To, capacityLimit(c.settings)) {
			return false, capacityError(c.settings, task.Title)
		}
		result.Task, _ = d.MoveTask(c.ID, c.To)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if result.Found {
		result.Message = fmt.Sprintf("Moved %q to %s", result.Task.Title, c.To.Title())
	} else {
		result.Message = "Task no longer exists"
	}
	return result, nil
}
