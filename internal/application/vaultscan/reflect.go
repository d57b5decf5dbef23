package vaultscan

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"focuslist/internal/domain"
	"focuslist/internal/logging"
)

// ReflectCompletion writes a task's completion state back to the note it
// came from. The stored line number is only a hint; the line is found again
// by its title. Returns whether the note was changed.
func (s *Scanner) ReflectCompletion(t domain.Task) (bool, error) {
	if t.SourceFile == "" {
		return false, nil
	}
	text, err := s.vault.Read(t.SourceFile)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Debug("scan", "source note %s is gone", t.SourceFile)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", t.SourceFile, err)
	}

	lines := strings.Split(text, "\n")
	idx := s.locate(lines, t)
	if idx < 0 {
		logging.Debug("scan", "no line for %q in %s", t.Title, t.SourceFile)
		return false, nil
	}
	if cb, _ := domain.ParseCheckbox(lines[idx]); cb.Checked == t.Completed {
		return false, nil
	}
	lines[idx], _ = domain.SetCheckboxMark(lines[idx], t.Completed)
	if err := s.vault.Write(t.SourceFile, strings.Join(lines, "\n")); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", t.SourceFile, err)
	}
	return true, nil
}

// locate returns the index of the line holding t, or -1. The hinted line is
// tried first, then the first line whose mark still needs to change, then
// any line with the same title.
func (s *Scanner) locate(lines []string, t domain.Task) int {
	matches := func(i int) (bool, bool) {
		cb, ok := domain.ParseCheckbox(lines[i])
		if !ok {
			return false, false
		}
		title, tagged := stripTag(cb.Text, s.settings.Scan.Tag)
		if !tagged {
			return false, false
		}
		parsed := domain.ParseTaskText(title)
		return strings.EqualFold(domain.NormalizeTitle(parsed.Title), t.Title), cb.Checked != t.Completed
	}

	if hint := t.SourceLine - 1; hint >= 0 && hint < len(lines) {
		if ok, _ := matches(hint); ok {
			return hint
		}
	}
	fallback := -1
	for i := range lines {
		ok, pending := matches(i)
		if !ok {
			continue
		}
		if pending {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}
