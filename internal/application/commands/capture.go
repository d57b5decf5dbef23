package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// CaptureImportResult contains the tasks pulled in from the capture file
type CaptureImportResult struct {
	Imported []domain.Task
	// FellBack counts tasks that went to Unscheduled because Immediate was full
	FellBack int
	Message  string
}

// CaptureImportCommand imports checkbox lines that an external bridge
// dropped into the capture file, then empties it
type CaptureImportCommand struct {
	repo     ports.FocusRepository
	vault    ports.VaultFiles
	settings domain.Settings
	NewID    IDGenerator
}

// NewCaptureImportCommand creates a new CaptureImportCommand
func NewCaptureImportCommand(repo ports.FocusRepository, vault ports.VaultFiles, settings domain.Settings) *CaptureImportCommand {
	return &CaptureImportCommand{repo: repo, vault: vault, settings: settings}
}

// ParseCaptureLines reads open checkbox lines with the task line grammar
func ParseCaptureLines(text string) []domain.Task {
	var tasks []domain.Task
	for _, line := range strings.Split(text, "\n") {
		cb, ok := domain.ParseCheckbox(line)
		if !ok || cb.Checked {
			continue
		}
		t := domain.ParseTaskText(cb.Text)
		t.Title = domain.NormalizeTitle(t.Title)
		if t.Title == "" {
			continue
		}
		t.CompletedAt = ""
		t.Section = ""
		tasks = append(tasks, t)
	}
	return tasks
}

// consume removes the text imported earlier from the capture file and keeps
// whatever the bridge appended since it was read
func (c *CaptureImportCommand) consume(file, read string) error {
	current, err := c.vault.Read(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var rest string
	if strings.HasPrefix(current, read) {
		rest = current[len(read):]
	} else {
		rest = dropLines(current, read)
	}
	return c.vault.Write(file, strings.TrimLeft(rest, "\n"))
}

// dropLines removes from text one occurrence of each line in gone
func dropLines(text, gone string) string {
	count := map[string]int{}
	for _, line := range strings.Split(gone, "\n") {
		count[line]++
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if count[line] > 0 {
			count[line]--
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Execute imports and clears the capture file
func (c *CaptureImportCommand) Execute(ctx context.Context) (*CaptureImportResult, error) {
	result := &CaptureImportResult{}
	file := c.settings.CaptureFile
	if file == "" {
		result.Message = "No capture file configured"
		return result, nil
	}

	text, err := c.vault.Read(file)
	if errors.Is(err, fs.ErrNotExist) {
		result.Message = "Nothing captured"
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file: %w", err)
	}
	captured := ParseCaptureLines(text)
	if len(captured) == 0 {
		result.Message = "Nothing captured"
		return result, nil
	}

	target := c.settings.CaptureSection
	if !target.Valid() {
		target = domain.SectionUnscheduled
	}

	_, err = c.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		result.Imported = nil
		result.FellBack = 0
		for _, t := range captured {
			if _, _, exists := d.FindTask(t.ID); t.ID == "" || exists || !domain.IsCanonicalID(t.ID) {
				t.ID = c.NewID.next()
			}
			if t.GoalID != "" && d.FindGoal(t.GoalID) == nil {
				t.GoalID = ""
			}
			t.Section = target
			if !d.HasRoom(target, capacityLimit(c.settings)) {
				t.Section = domain.SectionUnscheduled
				result.FellBack++
			}
			d.AppendTask(t)
			result.Imported = append(result.Imported, t)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.consume(file, text); err != nil {
		return nil, fmt.Errorf("imported %d tasks but failed to clear capture file: %w", len(result.Imported), err)
	}

	result.Message = fmt.Sprintf("Imported %d captured tasks", len(result.Imported))
	if result.FellBack > 0 {
		result.Message += fmt.Sprintf(" (%d to Unscheduled, Immediate is full)", result.FellBack)
	}
	return result, nil
}
