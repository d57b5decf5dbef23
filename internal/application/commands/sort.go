package commands

import (
	"context"
	"fmt"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// AutoSortResult contains the result of an auto-sort pass
type AutoSortResult struct {
	Promoted []domain.Task
	// Overflow lists tasks due today that did not fit in immediate.
	// They stay in this week until the user resolves them.
	Overflow []domain.Task
	Message  string
}

// AutoSortCommand promotes today's tasks and sorts every section
type AutoSortCommand struct {
	repo     ports.FocusRepository
	settings domain.Settings
	Now      Clock
}

// NewAutoSortCommand creates a new AutoSortCommand
func NewAutoSortCommand(repo ports.FocusRepository, settings domain.Settings) *AutoSortCommand {
	return &AutoSortCommand{repo: repo, settings: settings}
}

// Execute runs the pass; the document is only saved when something moved
func (c *AutoSortCommand) Execute(ctx context.Context) (*AutoSortResult, error) {
	today := c.Now.today()
	result := &AutoSortResult{}

	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		before := domain.Encode(d)
		result.Promoted, result.Overflow = d.AutoSort(today, capacityLimit(c.settings))
		return domain.Encode(d) != before, nil
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Promoted %d tasks", len(result.Promoted))
	if len(result.Overflow) > 0 {
		result.Message += fmt.Sprintf(", %d due today did not fit", len(result.Overflow))
	}
	return result, nil
}

// ResolveOverflowResult contains the outcome of a manual overflow decision
type ResolveOverflowResult struct {
	Promoted  []string
	Remaining []string
	Message   string
}

// ResolveOverflowCommand demotes chosen immediate tasks and promotes chosen
// overflow tasks. RaiseLimit lifts the capacity for this run only.
type ResolveOverflowCommand struct {
	repo       ports.FocusRepository
	settings   domain.Settings
	Promote    []string
	Demote     []string
	RaiseLimit bool
}

// NewResolveOverflowCommand creates a new ResolveOverflowCommand
func NewResolveOverflowCommand(repo ports.FocusRepository, settings domain.Settings, promote, demote []string, raiseLimit bool) *ResolveOverflowCommand {
	return &ResolveOverflowCommand{
		repo:       repo,
		settings:   settings,
		Promote:    promote,
		Demote:     demote,
		RaiseLimit: raiseLimit,
	}
}

// Execute applies the decision
func (c *ResolveOverflowCommand) Execute(ctx context.Context) (*ResolveOverflowResult, error) {
	result := &ResolveOverflowResult{}
	if len(c.Promote) == 0 && len(c.Demote) == 0 {
		result.Message = "Nothing to resolve"
		return result, nil
	}

	_, err := c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		limit := capacityLimit(c.settings)
		if c.RaiseLimit {
			limit = max(limit, d.IncompleteCount(domain.SectionImmediate)+len(c.Promote))
		}
		before := domain.Encode(d)
		result.Promoted, result.Remaining = d.ResolveOverflow(c.Promote, c.Demote, limit)
		return domain.Encode(d) != before, nil
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Promoted %d tasks", len(result.Promoted))
	if len(result.Remaining) > 0 {
		result.Message += fmt.Sprintf(", %d left in This Week", len(result.Remaining))
	}
	return result, nil
}
