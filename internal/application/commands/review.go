package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// DefaultReviewTemplate is used when no template is configured or it cannot be read
const DefaultReviewTemplate = `# Review {{date}}

## Done today
{{completed}}

## Still open
{{open}}

## Notes
`

// CreateReviewResult contains the path of the review note
type CreateReviewResult struct {
	Path    string
	Created bool
	Message string
}

// CreateReviewCommand writes the end-of-day review note
type CreateReviewCommand struct {
	repo     ports.FocusRepository
	vault    ports.VaultFiles
	settings domain.Settings
	Now      func() time.Time
}

// NewCreateReviewCommand creates a new CreateReviewCommand
func NewCreateReviewCommand(repo ports.FocusRepository, vault ports.VaultFiles, settings domain.Settings) *CreateReviewCommand {
	return &CreateReviewCommand{repo: repo, vault: vault, settings: settings}
}

// ReviewPath returns the vault-relative path of the review note for a day
func ReviewPath(pattern string, day time.Time) string {
	if pattern == "" {
		pattern = domain.DefaultReviewPathPattern
	}
	return domain.FormatDate(day, pattern) + ".md"
}

// Execute creates today's review note; an existing note is left alone
func (c *CreateReviewCommand) Execute(ctx context.Context) (*CreateReviewResult, error) {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	today := domain.Today(now)
	path := ReviewPath(c.settings.Review.PathPattern, now)

	if c.vault.Exists(path) {
		return &CreateReviewResult{Path: path, Message: fmt.Sprintf("Review already exists: %s", path)}, nil
	}

	data, err := c.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	body := strings.NewReplacer(
		"{{date}}", today,
		"{{completed}}", checklist(completedOn(data, today), true),
		"{{open}}", checklist(data.Tasks.Immediate, false),
	).Replace(c.template())

	if err := c.vault.Write(path, body); err != nil {
		return nil, fmt.Errorf("failed to write review: %w", err)
	}
	return &CreateReviewResult{Path: path, Created: true, Message: fmt.Sprintf("Created review %s", path)}, nil
}

// template falls back to the default when the configured one is missing
func (c *CreateReviewCommand) template() string {
	name := c.settings.Review.Template
	if name == "" {
		return DefaultReviewTemplate
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	text, err := c.vault.Read(name)
	if err != nil || strings.TrimSpace(text) == "" {
		return DefaultReviewTemplate
	}
	return text
}

func completedOn(d *domain.FocusData, day string) []domain.Task {
	var done []domain.Task
	for _, t := range d.CompletedTasks[domain.MonthKey(day)] {
		if t.CompletedAt == day {
			done = append(done, t)
		}
	}
	return done
}

func checklist(tasks []domain.Task, checked bool) string {
	if len(tasks) == 0 {
		return "- (none)"
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if !checked && t.Completed {
			continue
		}
		lines = append(lines, domain.CheckboxLine{Bullet: "-", Checked: checked, Text: t.Title}.String())
	}
	if len(lines) == 0 {
		return "- (none)"
	}
	return strings.Join(lines, "\n")
}
