// Package calsync keeps one calendar reminder per dated task.
// Completion flows from the calendar into the document; every other field
// flows from the document to the calendar.
package calsync

import (
	"context"
	"fmt"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/logging"
	"focuslist/internal/ports"
)

// Result summarizes one sync pass
type Result struct {
	Completed int // tasks completed on the calendar side
	Reopened  int // tasks reopened on the calendar side
	Upserted  int
	Deleted   int
}

// Syncer reconciles the focus document with a calendar collection
type Syncer struct {
	repo     ports.FocusRepository
	calendar ports.CalendarClient
	settings domain.Settings

	Location *time.Location
	Now      func() time.Time
	NewID    func() string

	// Reflect, when set, carries calendar completions on to the source note
	Reflect func(t domain.Task) (bool, error)
}

// NewSyncer creates a new Syncer
func NewSyncer(repo ports.FocusRepository, calendar ports.CalendarClient, settings domain.Settings) *Syncer {
	return &Syncer{repo: repo, calendar: calendar, settings: settings}
}

// Sync runs one pass: calendar completions first, then document → calendar
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	existing, err := s.calendar.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	byUID := make(map[string]domain.Reminder, len(existing))
	for _, r := range existing {
		byUID[r.UID] = r
	}

	result := &Result{}
	data, err := s.applyCompletions(ctx, existing, result)
	if err != nil {
		return nil, err
	}

	want := map[string]domain.Reminder{}
	for _, r := range s.desired(data, byUID) {
		want[r.UID] = r
		if cur, ok := byUID[r.UID]; ok && cur.Equal(r) {
			continue
		}
		if err := s.calendar.Upsert(ctx, r); err != nil {
			return result, fmt.Errorf("failed to write reminder %s: %w", r.UID, err)
		}
		result.Upserted++
	}
	for uid := range byUID {
		if _, ok := want[uid]; ok {
			continue
		}
		if err := s.calendar.Delete(ctx, uid); err != nil {
			return result, fmt.Errorf("failed to delete reminder %s: %w", uid, err)
		}
		result.Deleted++
	}

	if result.Completed+result.Reopened+result.Upserted+result.Deleted > 0 {
		logging.Info("calendar", "completed %d, reopened %d, wrote %d, deleted %d",
			result.Completed, result.Reopened, result.Upserted, result.Deleted)
	}
	return result, nil
}

// applyCompletions archives tasks completed on the calendar and restores
// tasks reopened there. Returns the document as saved.
func (s *Syncer) applyCompletions(ctx context.Context, reminders []domain.Reminder, result *Result) (*domain.FocusData, error) {
	today := domain.Today(s.now())
	var toggled []domain.Task
	data, err := s.repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		result.Completed, result.Reopened = 0, 0
		toggled = toggled[:0]
		for _, r := range reminders {
			ref, t, ok := d.FindTask(r.UID)
			if !ok {
				continue
			}
			switch {
			case r.CompletedExternally() && !ref.Archived():
				archived, _ := d.Archive(t.ID, today)
				if next, ok := domain.SpawnNext(archived, today, s.newID()); ok {
					d.AppendTask(next)
				}
				toggled = append(toggled, archived)
				result.Completed++
			case r.UncompletedExternally() && ref.Archived():
				restored, _, ok := d.Reopen(t.ID, s.settings.MaxImmediate)
				if !ok {
					logging.Info("calendar", "not reopening %q: %s is full", t.Title, t.Section.Title())
					continue
				}
				toggled = append(toggled, restored)
				result.Reopened++
			}
		}
		return result.Completed+result.Reopened > 0, nil
	})
	if err != nil {
		return nil, err
	}

	if s.Reflect != nil {
		for _, t := range toggled {
			if t.SourceFile == "" {
				continue
			}
			if _, err := s.Reflect(t); err != nil {
				logging.Warn("calendar", "note %s not updated: %v", t.SourceFile, err)
			}
		}
	}
	return data, nil
}

// desired lists the reminders the calendar should hold: every dated active
// task, plus archived tasks whose reminder still exists so it shows as done
func (s *Syncer) desired(d *domain.FocusData, existing map[string]domain.Reminder) []domain.Reminder {
	var out []domain.Reminder
	for _, sec := range domain.Sections {
		for _, t := range *d.List(sec) {
			if r, ok := domain.ReminderFor(t, s.settings.Calendar.Alert, s.Location); ok {
				out = append(out, r)
			}
		}
	}
	for _, key := range d.MonthKeys() {
		for _, t := range d.CompletedTasks[key] {
			if _, ok := existing[t.ID]; !ok {
				continue
			}
			if r, ok := domain.ReminderFor(t, s.settings.Calendar.Alert, s.Location); ok {
				out = append(out, r)
			}
		}
	}
	return out
}

func (s *Syncer) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Syncer) newID() string {
	if s.NewID == nil {
		return domain.NewID()
	}
	return s.NewID()
}
