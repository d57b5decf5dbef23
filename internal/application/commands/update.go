package commands

import (
	"context"
	"fmt"

	"focuslist/internal/application"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// TaskPatch lists the fields to change; nil leaves a field alone and an
// empty string clears it
type TaskPatch struct {
	Title      *string
	URL        *string
	DoDate     *string
	DoTime     *string
	Recurrence *string
	GoalID     *string
}

// UpdateTaskResult contains the result of editing a task
type UpdateTaskResult struct {
	Found   bool
	Task    domain.Task
	Message string
}

// UpdateTaskCommand edits a task in place
type UpdateTaskCommand struct {
	repo  ports.FocusRepository
	ID    string
	Patch TaskPatch
}

// NewUpdateTaskCommand creates a new UpdateTaskCommand
func NewUpdateTaskCommand(repo ports.FocusRepository, id string, patch TaskPatch) *UpdateTaskCommand {
	return &UpdateTaskCommand{repo: repo, ID: id, Patch: patch}
}

// Validate checks the patched values on their own
func (c *UpdateTaskCommand) Validate() error {
	if err := requireID("taskID", c.ID); err != nil {
		return err
	}
	if c.Patch.Title != nil {
		if err := application.ValidateTitle("title", *c.Patch.Title); err != nil {
			return err
		}
	}
	if c.Patch.URL != nil {
		if err := application.ValidateURL("url", *c.Patch.URL); err != nil {
			return err
		}
	}
	if c.Patch.DoDate != nil && *c.Patch.DoDate != "" && !domain.ValidDate(*c.Patch.DoDate) {
		return &application.ValidationError{Field: "doDate", Message: fmt.Sprintf("expected YYYY-MM-DD, got: %s", *c.Patch.DoDate)}
	}
	if c.Patch.DoTime != nil && *c.Patch.DoTime != "" && !domain.ValidTime(*c.Patch.DoTime) {
		return &application.ValidationError{Field: "doTime", Message: fmt.Sprintf("expected HH:MM, got: %s", *c.Patch.DoTime)}
	}
	if c.Patch.Recurrence != nil {
		if _, err := application.ValidateRecurrence(*c.Patch.Recurrence); err != nil {
			return err
		}
	}
	return nil
}

// Execute applies the patch
func (c *UpdateTaskCommand) Execute(ctx context.Context) (*UpdateTaskResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	result := &UpdateTaskResult{}

	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		_, task, ok := d.FindTask(c.ID)
		if !ok {
			return false, nil
		}
		result.Found = true

		updated := task.Clone()
		p := c.Patch
		if p.Title != nil {
			updated.Title = domain.NormalizeTitle(*p.Title)
		}
		if p.URL != nil {
			updated.URL = *p.URL
		}
		if p.DoDate != nil {
			updated.DoDate = *p.DoDate
		}
		if p.DoTime != nil {
			updated.DoTime = *p.DoTime
		}
		if p.Recurrence != nil {
			updated.Recurrence, _ = application.ValidateRecurrence(*p.Recurrence)
		}
		if p.GoalID != nil {
			if *p.GoalID != "" && d.FindGoal(*p.GoalID) == nil {
				return false, &application.ValidationError{Field: "goalID", Message: fmt.Sprintf("unknown goal: %s", *p.GoalID)}
			}
			updated.GoalID = *p.GoalID
		}
		if err := application.ValidateSchedule(updated.DoDate, updated.DoTime); err != nil {
			return false, err
		}

		*task = updated
		result.Task = updated
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if result.Found {
		result.Message = fmt.Sprintf("Updated %q", result.Task.Title)
	} else {
		result.Message = "Task no longer exists"
	}
	return result, nil
}
