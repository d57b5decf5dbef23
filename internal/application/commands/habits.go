package commands

import (
	"context"
	"fmt"

	"focuslist/internal/application"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// HabitResult contains the result of a habit command
type HabitResult struct {
	Found   bool
	Habit   domain.DailyHabit
	Message string
}

// AddHabitCommand adds a daily habit
type AddHabitCommand struct {
	repo  ports.FocusRepository
	Title string
	NewID IDGenerator
}

// NewAddHabitCommand creates a new AddHabitCommand
func NewAddHabitCommand(repo ports.FocusRepository, title string) *AddHabitCommand {
	return &AddHabitCommand{repo: repo, Title: title}
}

// Validate checks the title
func (c *AddHabitCommand) Validate() error {
	return application.ValidateRequired("title", c.Title)
}

// Execute adds the habit unless the habit list is full
func (c *AddHabitCommand) Execute(ctx context.Context) (*HabitResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	habit := domain.DailyHabit{ID: c.NewID.next(), Title: domain.NormalizeTitle(c.Title)}
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		if !d.AddHabit(habit) {
			return false, fmt.Errorf("%w: at most %d habits", application.ErrHabitLimit, domain.MaxHabits)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &HabitResult{Found: true, Habit: habit, Message: fmt.Sprintf("Added habit %q", habit.Title)}, nil
}

// ToggleHabitCommand flips today's completion of a habit
type ToggleHabitCommand struct {
	repo ports.FocusRepository
	ID   string
}

// NewToggleHabitCommand creates a new ToggleHabitCommand
func NewToggleHabitCommand(repo ports.FocusRepository, id string) *ToggleHabitCommand {
	return &ToggleHabitCommand{repo: repo, ID: id}
}

// Execute toggles the habit
func (c *ToggleHabitCommand) Execute(ctx context.Context) (*HabitResult, error) {
	if err := requireID("habitID", c.ID); err != nil {
		return nil, err
	}
	result := &HabitResult{}
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		result.Habit, result.Found = d.ToggleHabit(c.ID)
		return result.Found, nil
	})
	if err != nil {
		return nil, err
	}
	switch {
	case !result.Found:
		result.Message = "Habit no longer exists"
	case result.Habit.CompletedToday:
		result.Message = fmt.Sprintf("Done %q for today", result.Habit.Title)
	default:
		result.Message = fmt.Sprintf("Unchecked %q", result.Habit.Title)
	}
	return result, nil
}

// DeleteHabitCommand removes a habit
type DeleteHabitCommand struct {
	repo ports.FocusRepository
	ID   string
}

// NewDeleteHabitCommand creates a new DeleteHabitCommand
func NewDeleteHabitCommand(repo ports.FocusRepository, id string) *DeleteHabitCommand {
	return &DeleteHabitCommand{repo: repo, ID: id}
}

// Execute deletes the habit
func (c *DeleteHabitCommand) Execute(ctx context.Context) (*HabitResult, error) {
	if err := requireID("habitID", c.ID); err != nil {
		return nil, err
	}
	result := &HabitResult{}
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		if h := d.FindHabit(c.ID); h != nil {
			result.Habit = *h
		}
		result.Found = d.DeleteHabit(c.ID)
		return result.Found, nil
	})
	if err != nil {
		return nil, err
	}
	if result.Found {
		result.Message = fmt.Sprintf("Deleted habit %q", result.Habit.Title)
	} else {
		result.Message = "Habit no longer exists"
	}
	return result, nil
}

// ResetHabitsCommand clears habit completion once a new day starts
type ResetHabitsCommand struct {
	repo ports.FocusRepository
	Now  Clock
}

// NewResetHabitsCommand creates a new ResetHabitsCommand
func NewResetHabitsCommand(repo ports.FocusRepository) *ResetHabitsCommand {
	return &ResetHabitsCommand{repo: repo}
}

// Execute resets habits when today is past the stored reset date
func (c *ResetHabitsCommand) Execute(ctx context.Context) (bool, error) {
	today := c.Now.today()
	reset := false
	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		reset = d.ResetHabits(today)
		return reset, nil
	})
	return reset, err
}
