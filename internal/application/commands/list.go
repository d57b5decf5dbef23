package commands

import (
	"context"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// TaskView is a task as shown in listings
type TaskView struct {
	domain.Task
	Overdue  bool
	Archived bool
	Goal     string // goal title, empty when unlinked
}

// ListTasksResult contains the listed tasks and the document they came from
type ListTasksResult struct {
	Data  *domain.FocusData
	Tasks []TaskView
}

// ListTasksCommand lists tasks, optionally limited to one section
type ListTasksCommand struct {
	repo ports.FocusRepository

	// Section limits the listing; empty lists every active section
	Section         domain.Section
	IncludeArchived bool
	Now             func() time.Time
}

// NewListTasksCommand creates a new ListTasksCommand
func NewListTasksCommand(repo ports.FocusRepository) *ListTasksCommand {
	return &ListTasksCommand{repo: repo}
}

// Execute loads the document and builds the listing
func (c *ListTasksCommand) Execute(ctx context.Context) (*ListTasksResult, error) {
	data, err := c.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	view := func(t domain.Task, archived bool) TaskView {
		v := TaskView{Task: t, Archived: archived, Overdue: domain.IsOverdue(t, now)}
		if g := data.FindGoal(t.GoalID); g != nil {
			v.Goal = g.Title
		}
		return v
	}

	result := &ListTasksResult{Data: data}
	for _, s := range domain.Sections {
		if c.Section != "" && c.Section != s {
			continue
		}
		for _, t := range *data.List(s) {
			result.Tasks = append(result.Tasks, view(t, false))
		}
	}
	if c.IncludeArchived {
		for _, key := range data.MonthKeys() {
			for _, t := range data.CompletedTasks[key] {
				if c.Section == "" || c.Section == t.Section {
					result.Tasks = append(result.Tasks, view(t, true))
				}
			}
		}
	}
	return result, nil
}
