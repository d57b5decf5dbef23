package commands

import (
	"context"
	"fmt"

	"focuslist/internal/domain"
	"focuslist/internal/logging"
	"focuslist/internal/ports"
)

// ToggleCompleteResult contains the result of completing or restoring a task
type ToggleCompleteResult struct {
	Found     bool
	Task      domain.Task
	Completed bool         // true when the task was archived, false when restored
	Next      *domain.Task // next occurrence of a completed recurring task
	Dropped   *domain.Task // that occurrence, removed again by a restore
	Message   string

	NoteUpdated bool
	NoteErr     error // the document change stands even when the note write fails
}

// ToggleCompleteCommand archives an active task or restores an archived one
type ToggleCompleteCommand struct {
	repo     ports.FocusRepository
	settings domain.Settings
	ID       string

	Now     Clock
	NewID   IDGenerator
	Reflect CompletionReflector
}

// NewToggleCompleteCommand creates a new ToggleCompleteCommand
func NewToggleCompleteCommand(repo ports.FocusRepository, settings domain.Settings, id string) *ToggleCompleteCommand {
	return &ToggleCompleteCommand{repo: repo, settings: settings, ID: id}
}

// Validate checks the task id
func (c *ToggleCompleteCommand) Validate() error {
	return requireID("taskID", c.ID)
}

// Execute toggles completion. A task that no longer exists is a silent no-op.
func (c *ToggleCompleteCommand) Execute(ctx context.Context) (*ToggleCompleteResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	today := c.Now.today()
	result := &ToggleCompleteResult{}

	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		ref, task, ok := d.FindTask(c.ID)
		if !ok {
			return false, nil
		}
		result.Found = true

		if ref.Archived() {
			restored, dropped, ok := d.Reopen(c.ID, capacityLimit(c.settings))
			if !ok {
				return false, capacityError(c.settings, task.Title)
			}
			result.Task, result.Dropped = restored, dropped
			return true, nil
		}

		result.Task, _ = d.Archive(c.ID, today)
		result.Completed = true
		if next, ok := domain.SpawnNext(result.Task, today, c.NewID.next()); ok {
			d.AppendTask(next)
			result.Next = &next
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if result.Found && result.Task.SourceFile != "" && c.Reflect != nil {
		result.NoteUpdated, result.NoteErr = c.Reflect(result.Task)
		if result.NoteErr != nil {
			logging.Warn("commands", "note %s not updated: %v", result.Task.SourceFile, result.NoteErr)
		}
	}

	switch {
	case !result.Found:
		result.Message = "Task no longer exists"
	case result.Next != nil:
		result.Message = fmt.Sprintf("Completed %q, next on %s", result.Task.Title, result.Next.DoDate)
	case result.Completed:
		result.Message = fmt.Sprintf("Completed %q", result.Task.Title)
	case result.Dropped != nil:
		result.Message = fmt.Sprintf("Restored %q to %s, dropped the %s occurrence",
			result.Task.Title, result.Task.Section.Title(), result.Dropped.DoDate)
	default:
		result.Message = fmt.Sprintf("Restored %q to %s", result.Task.Title, result.Task.Section.Title())
	}
	return result, nil
}
