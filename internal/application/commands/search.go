package commands

import (
	"context"
	"sort"
	"strings"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// SearchResult is a task matching a query, with a relevance score
type SearchResult struct {
	Task     domain.Task
	Archived bool
	Score    int
}

// SearchTasksCommand searches task titles, active and archived, with fuzzy matching
type SearchTasksCommand struct {
	repo  ports.FocusRepository
	Query string
}

// NewSearchTasksCommand creates a new SearchTasksCommand
func NewSearchTasksCommand(repo ports.FocusRepository, query string) *SearchTasksCommand {
	return &SearchTasksCommand{
		repo:  repo,
		Query: query,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchTasksCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < 2 {
		return nil, nil
	}

	data, err := c.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, s := range domain.Sections {
		for _, t := range *data.List(s) {
			results = append(results, SearchResult{Task: t})
		}
	}
	for _, key := range data.MonthKeys() {
		for _, t := range data.CompletedTasks[key] {
			results = append(results, SearchResult{Task: t, Archived: true})
		}
	}
	return FuzzySort(results, c.Query), nil
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Exact substring match ranks highest
	if strings.Contains(target, query) {
		score := 100
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: chars must appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && (target[i-1] == ' ' || target[i-1] == '/' || target[i-1] == '-') {
				score += 10 // after separator
			}
			score++
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// FuzzySort scores candidates by title and URL, drops non-matches and sorts by score
func FuzzySort(candidates []SearchResult, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(candidates))

	for _, r := range candidates {
		best := max(FuzzyScore(r.Task.Title, query), FuzzyScore(r.Task.URL, query))
		if best > 0 {
			r.Score = best
			scored = append(scored, r)
		}
	}

	// Stable so equal scores keep document order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
