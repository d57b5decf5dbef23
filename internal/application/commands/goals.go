package commands

import (
	"context"
	"fmt"

	"focuslist/internal/application"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// GoalResult contains the result of a goal command
type GoalResult struct {
	Found   bool
	Goal    domain.WeeklyGoal
	Message string
}

// AddGoalCommand adds a weekly goal
type AddGoalCommand struct {
	repo  ports.FocusRepository
	Title string
	NewID IDGenerator
}

// NewAddGoalCommand creates a new AddGoalCommand
func NewAddGoalCommand(repo ports.FocusRepository, title string) *AddGoalCommand {
	return &AddGoalCommand{repo: repo, Title: title}
}

// Validate checks the title
func (c *AddGoalCommand) Validate() error {
	return application.ValidateRequired("title", c.Title)
}

// Execute adds the goal
func (c *AddGoalCommand) Execute(ctx context.Context) (*GoalResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	goal := domain.WeeklyGoal{ID: c.NewID.next(), Title: domain.NormalizeTitle(c.Title)}
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		d.AddGoal(goal)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &GoalResult{Found: true, Goal: goal, Message: fmt.Sprintf("Added goal %q", goal.Title)}, nil
}

// RenameGoalCommand changes a goal's title
type RenameGoalCommand struct {
	repo  ports.FocusRepository
	ID    string
	Title string
}

// NewRenameGoalCommand creates a new RenameGoalCommand
func NewRenameGoalCommand(repo ports.FocusRepository, id, title string) *RenameGoalCommand {
	return &RenameGoalCommand{repo: repo, ID: id, Title: title}
}

// Validate checks the id and title
func (c *RenameGoalCommand) Validate() error {
	if err := requireID("goalID", c.ID); err != nil {
		return err
	}
	return application.ValidateRequired("title", c.Title)
}

// Execute renames the goal
func (c *RenameGoalCommand) Execute(ctx context.Context) (*GoalResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	result := &GoalResult{}
	title := domain.NormalizeTitle(c.Title)
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		result.Found = d.RenameGoal(c.ID, title)
		if result.Found {
			result.Goal = *d.FindGoal(c.ID)
		}
		return result.Found, nil
	})
	if err != nil {
		return nil, err
	}
	result.Message = goalMessage(result, "Renamed goal to %q")
	return result, nil
}

// DeleteGoalCommand removes a goal and unlinks its tasks
type DeleteGoalCommand struct {
	repo ports.FocusRepository
	ID   string
}

// NewDeleteGoalCommand creates a new DeleteGoalCommand
func NewDeleteGoalCommand(repo ports.FocusRepository, id string) *DeleteGoalCommand {
	return &DeleteGoalCommand{repo: repo, ID: id}
}

// Validate checks the id
func (c *DeleteGoalCommand) Validate() error {
	return requireID("goalID", c.ID)
}

// Execute deletes the goal
func (c *DeleteGoalCommand) Execute(ctx context.Context) (*GoalResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	result := &GoalResult{}
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		if g := d.FindGoal(c.ID); g != nil {
			result.Goal = *g
		}
		result.Found = d.DeleteGoal(c.ID)
		return result.Found, nil
	})
	if err != nil {
		return nil, err
	}
	result.Message = goalMessage(result, "Deleted goal %q")
	return result, nil
}

func goalMessage(r *GoalResult, format string) string {
	if !r.Found {
		return "Goal no longer exists"
	}
	return fmt.Sprintf(format, r.Goal.Title)
}
