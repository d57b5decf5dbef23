package commands

import (
	"context"
	"fmt"

	"focuslist/internal/application"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// AddTaskResult contains the result of adding a task
type AddTaskResult struct {
	Task    domain.Task
	Message string
}

// AddTaskCommand appends a new task to a section
type AddTaskCommand struct {
	repo     ports.FocusRepository
	settings domain.Settings

	Title      string
	Section    domain.Section
	URL        string
	DoDate     string
	DoTime     string
	Recurrence string // type:interval[:day]
	GoalID     string

	NewID IDGenerator
}

// NewAddTaskCommand creates a new AddTaskCommand
func NewAddTaskCommand(repo ports.FocusRepository, settings domain.Settings, title string, section domain.Section) *AddTaskCommand {
	return &AddTaskCommand{
		repo:     repo,
		settings: settings,
		Title:    title,
		Section:  section,
	}
}

// Validate checks the task fields
func (c *AddTaskCommand) Validate() error {
	if err := application.ValidateTitle("title", c.Title); err != nil {
		return err
	}
	if err := application.ValidateURL("url", c.URL); err != nil {
		return err
	}
	if err := application.ValidateSection("section", c.Section); err != nil {
		return err
	}
	if err := application.ValidateSchedule(c.DoDate, c.DoTime); err != nil {
		return err
	}
	if _, err := application.ValidateRecurrence(c.Recurrence); err != nil {
		return err
	}
	return nil
}

// Execute adds the task unless the immediate section is full
func (c *AddTaskCommand) Execute(ctx context.Context) (*AddTaskResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rec, _ := application.ValidateRecurrence(c.Recurrence)

	task := domain.Task{
		ID:         c.NewID.next(),
		Title:      domain.NormalizeTitle(c.Title),
		Section:    c.Section,
		URL:        c.URL,
		DoDate:     c.DoDate,
		DoTime:     c.DoTime,
		Recurrence: rec,
		GoalID:     c.GoalID,
	}

	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		if !d.HasRoom(task.Section, capacityLimit(c.settings)) {
			return false, capacityError(c.settings, task.Title)
		}
		if task.GoalID != "" && d.FindGoal(task.GoalID) == nil {
			return false, &application.ValidationError{
				Field:   "goalID",
				Message: fmt.Sprintf("unknown goal: %s", task.GoalID),
			}
		}
		d.AppendTask(task)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return &AddTaskResult{
		Task:    task,
		Message: fmt.Sprintf("Added %q to %s", task.Title, task.Section.Title()),
	}, nil
}
