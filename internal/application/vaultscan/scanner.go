// Package vaultscan pulls checkbox tasks out of the rest of the vault and
// keeps their completion state in step with the focus document.
package vaultscan

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/logging"
	"focuslist/internal/ports"
)

// Result summarizes one scan
type Result struct {
	Files     int
	Imported  int
	Archived  int
	Restored  int
	Reflected int // notes brought in line with the document
	Retitled  int
}

// Scanner reads notes through VaultFiles and writes into the focus document
type Scanner struct {
	repo     ports.FocusRepository
	vault    ports.VaultFiles
	settings domain.Settings

	Now   func() time.Time
	NewID func() string

	mu    sync.Mutex
	marks map[string]bool // task id → checkbox state seen by the last scan
}

// NewScanner creates a new Scanner
func NewScanner(repo ports.FocusRepository, vault ports.VaultFiles, settings domain.Settings) *Scanner {
	return &Scanner{repo: repo, vault: vault, settings: settings, marks: map[string]bool{}}
}

// found is a checkbox line in a vault note
type found struct {
	file    string
	line    int // 1-based
	title   string
	checked bool
	task    domain.Task
}

// rename is a note line whose title is rewritten to the document's
type rename struct {
	file     string
	line     int
	from, to string
}

func (s *Scanner) today() string {
	if s.Now == nil {
		return domain.Today(time.Now())
	}
	return domain.Today(s.Now())
}

// Scan imports new open checkbox lines into Unscheduled and keeps the
// completion state of tracked tasks in step with their notes. A checkbox
// the user flipped since the last scan wins over the document; otherwise
// the document wins and the note is rewritten to match it.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &Result{}
	var lines []found

	err := s.vault.Walk(func(e ports.Entry) error {
		if !e.IsFile() || !s.included(e.Path) {
			return nil
		}
		text, err := s.vault.Read(e.Path)
		if err != nil {
			logging.Warn("scan", "skipping %s: %v", e.Path, err)
			return nil
		}
		result.Files++
		lines = append(lines, s.checkboxes(e.Path, text)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk vault: %w", err)
	}
	if len(lines) == 0 {
		return result, nil
	}

	today := s.today()
	var (
		marks   map[string]bool
		follow  []domain.Task
		renames []rename
	)
	_, err = s.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		*result = Result{Files: result.Files}
		marks = make(map[string]bool, len(lines))
		follow, renames = nil, nil
		changed := false
		matched := s.match(d, lines)

		for i, f := range lines {
			id := matched[i]
			if id == "" {
				if f.checked {
					continue
				}
				t := f.task
				t.ID = s.newID()
				t.Section = domain.SectionUnscheduled
				t.SourceFile, t.SourceLine = f.file, f.line
				d.AppendTask(t)
				marks[t.ID] = false
				result.Imported++
				changed = true
				continue
			}

			ref, t, _ := d.FindTask(id)
			if t.SourceLine != f.line {
				t.SourceLine = f.line
				changed = true
			}
			if !strings.EqualFold(t.Title, f.title) {
				renames = append(renames, rename{file: f.file, line: f.line, from: f.title, to: t.Title})
			}

			if f.checked == ref.Archived() {
				marks[id] = f.checked
				continue
			}
			prev, known := s.marks[id]
			flipped := known && prev != f.checked
			if !flipped && (known || !f.checked) {
				// the document moved on its own; the note follows
				follow = append(follow, t.Clone())
				marks[id] = ref.Archived()
				continue
			}

			if f.checked {
				archived, _ := d.Archive(id, today)
				if next, ok := domain.SpawnNext(archived, today, s.newID()); ok {
					d.AppendTask(next)
				}
				marks[id] = true
				result.Archived++
				changed = true
				continue
			}
			if _, _, ok := d.Reopen(id, s.settings.MaxImmediate); !ok {
				logging.Info("scan", "not restoring %q: %s is full", t.Title, t.Section.Title())
				if known {
					marks[id] = prev
				}
				continue
			}
			marks[id] = false
			result.Restored++
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	s.marks = marks

	for _, r := range renames {
		ok, err := s.retitle(r)
		if err != nil {
			logging.Warn("scan", "note %s not retitled: %v", r.file, err)
			continue
		}
		if ok {
			result.Retitled++
		}
	}

	for _, t := range follow {
		ok, err := s.ReflectCompletion(t)
		if err != nil {
			logging.Warn("scan", "note %s not updated: %v", t.SourceFile, err)
			delete(s.marks, t.ID)
			continue
		}
		if ok {
			result.Reflected++
		}
	}
	if result.Imported+result.Archived+result.Restored+result.Reflected+result.Retitled > 0 {
		logging.Info("scan", "%d files: imported %d, archived %d, restored %d, reflected %d, retitled %d",
			result.Files, result.Imported, result.Archived, result.Restored, result.Reflected, result.Retitled)
	}
	return result, nil
}

// match pairs each note line with a tracked task id, or "" for new lines.
// Lines are matched by title first; a line left over then claims a leftover
// task recorded at the same file and line, which covers tasks retitled in
// the document.
func (s *Scanner) match(d *domain.FocusData, lines []found) []string {
	tracked := trackedTasks(d)
	matched := make([]string, len(lines))
	for i, f := range lines {
		key := sourceKey(f.file, f.title)
		if ids := tracked[key]; len(ids) > 0 {
			matched[i] = ids[0]
			tracked[key] = ids[1:]
		}
	}

	byLine := map[string]string{}
	for _, ids := range tracked {
		for _, id := range ids {
			if _, t, ok := d.FindTask(id); ok {
				byLine[lineKey(t.SourceFile, t.SourceLine)] = id
			}
		}
	}
	for i, f := range lines {
		if matched[i] != "" {
			continue
		}
		key := lineKey(f.file, f.line)
		if id, ok := byLine[key]; ok {
			matched[i] = id
			delete(byLine, key)
		}
	}
	return matched
}

// retitle rewrites the title on a note line so later scans match it by title
func (s *Scanner) retitle(r rename) (bool, error) {
	text, err := s.vault.Read(r.file)
	if err != nil {
		return false, err
	}
	lines := strings.Split(text, "\n")
	i := r.line - 1
	if i < 0 || i >= len(lines) {
		return false, nil
	}
	if _, ok := domain.ParseCheckbox(lines[i]); !ok {
		return false, nil
	}
	mark := strings.Index(lines[i], "]")
	at := strings.Index(lines[i][mark:], r.from)
	if at < 0 {
		logging.Debug("scan", "title %q not found verbatim in %s:%d", r.from, r.file, r.line)
		return false, nil
	}
	at += mark
	lines[i] = lines[i][:at] + r.to + lines[i][at+len(r.from):]
	if err := s.vault.Write(r.file, strings.Join(lines, "\n")); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Scanner) newID() string {
	if s.NewID == nil {
		return domain.NewID()
	}
	return s.NewID()
}

// included filters out the focus document, the capture file and excluded folders
func (s *Scanner) included(p string) bool {
	if !strings.HasSuffix(p, ".md") {
		return false
	}
	if p == s.settings.FocusFile || (s.settings.CaptureFile != "" && p == s.settings.CaptureFile) {
		return false
	}
	for _, part := range strings.Split(path.Dir(p), "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return false
		}
	}
	for _, folder := range s.settings.Scan.ExcludeFolders {
		folder = strings.Trim(folder, "/")
		if folder != "" && (p == folder || strings.HasPrefix(p, folder+"/")) {
			return false
		}
	}
	return true
}

func (s *Scanner) checkboxes(file, text string) []found {
	var out []found
	for i, line := range strings.Split(text, "\n") {
		cb, ok := domain.ParseCheckbox(line)
		if !ok {
			continue
		}
		title, tagged := stripTag(cb.Text, s.settings.Scan.Tag)
		if !tagged {
			continue
		}
		t := domain.ParseTaskText(title)
		t.Title = domain.NormalizeTitle(t.Title)
		if t.Title == "" {
			continue
		}
		// ids, sources and sections belong to the focus document
		t.ID, t.SourceFile, t.SourceLine, t.Section, t.GoalID = "", "", 0, "", ""
		t.Completed, t.CompletedAt = false, ""
		out = append(out, found{file: file, line: i + 1, title: t.Title, checked: cb.Checked, task: t})
	}
	return out
}

// stripTag removes the scan tag from a line; an empty tag matches every line
func stripTag(text, tag string) (string, bool) {
	if tag == "" {
		return text, true
	}
	fields := strings.Fields(text)
	kept := fields[:0]
	hit := false
	for _, f := range fields {
		if f == tag {
			hit = true
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " "), hit
}

func sourceKey(file, title string) string {
	return file + "\x00" + strings.ToLower(title)
}

func lineKey(file string, line int) string {
	return fmt.Sprintf("%s\x00%d", file, line)
}

// trackedTasks indexes tasks imported from notes, active ones first
func trackedTasks(d *domain.FocusData) map[string][]string {
	idx := map[string][]string{}
	add := func(t domain.Task) {
		if t.SourceFile != "" {
			key := sourceKey(t.SourceFile, t.Title)
			idx[key] = append(idx[key], t.ID)
		}
	}
	for _, s := range domain.Sections {
		for _, t := range *d.List(s) {
			add(t)
		}
	}
	for _, key := range d.MonthKeys() {
		for _, t := range d.CompletedTasks[key] {
			add(t)
		}
	}
	return idx
}
