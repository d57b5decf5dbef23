package ics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"focuslist/internal/domain"
)

func newTestCollection(t *testing.T) *Collection {
	t.Helper()
	c, err := NewCollection(t.TempDir())
	if err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}
	c.Location = time.UTC
	c.Now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestUpsertList(t *testing.T) {
	c := newTestCollection(t)
	ctx := context.Background()
	alarm := 15 * time.Minute

	timed, _ := domain.ReminderFor(domain.Task{ID: "a", Title: "Call, then write", DoDate: "2026-10-15", DoTime: "14:30", URL: "https://example.com/x"}, domain.Alert15m, time.UTC)
	allDay, _ := domain.ReminderFor(domain.Task{ID: "b", Title: "Bins", DoDate: "2026-10-16", Completed: true}, domain.AlertNone, time.UTC)

	for _, r := range []domain.Reminder{timed, allDay} {
		if err := c.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", r.UID, err)
		}
	}

	got, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(got))
	}
	byUID := map[string]domain.Reminder{}
	for _, r := range got {
		byUID[r.UID] = r
	}
	if r := byUID["a"]; !r.Equal(timed) {
		t.Errorf("timed reminder = %+v, want %+v", r, timed)
	}
	if r := byUID["a"]; r.Alarm == nil || *r.Alarm != alarm {
		t.Errorf("alarm = %v", r.Alarm)
	}
	if r := byUID["b"]; !r.Equal(allDay) || !r.AllDay || !r.Completed {
		t.Errorf("all-day reminder = %+v, want %+v", r, allDay)
	}

	t.Run("start is half an hour before due", func(t *testing.T) {
		raw, _ := os.ReadFile(filepath.Join(c.Dir(), "a.ics"))
		if !strings.Contains(string(raw), "20261015T140000Z") {
			t.Errorf("missing DTSTART in\n%s", raw)
		}
	})

	t.Run("update replaces the alarm", func(t *testing.T) {
		timed.Alarm = nil
		timed.Title = "Call"
		if err := c.Upsert(ctx, timed); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, _ := c.List(ctx)
		for _, r := range got {
			if r.UID == "a" && !r.Equal(timed) {
				t.Errorf("updated reminder = %+v", r)
			}
		}
	})
}

func TestCompletionOnCalendarSide(t *testing.T) {
	c := newTestCollection(t)
	ctx := context.Background()
	r, _ := domain.ReminderFor(domain.Task{ID: "a", Title: "Call", DoDate: "2026-10-15"}, domain.AlertNone, time.UTC)
	if err := c.Upsert(ctx, r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	path := filepath.Join(c.Dir(), "a.ics")
	raw, _ := os.ReadFile(path)
	edited := strings.Replace(string(raw), "STATUS:NEEDS-ACTION", "STATUS:COMPLETED", 1)
	if err := os.WriteFile(path, []byte(edited), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || !got[0].CompletedExternally() {
		t.Errorf("expected an external completion, got %+v", got)
	}
}

func TestDelete(t *testing.T) {
	c := newTestCollection(t)
	ctx := context.Background()
	r, _ := domain.ReminderFor(domain.Task{ID: "a", Title: "Call", DoDate: "2026-10-15"}, domain.AlertNone, time.UTC)
	if err := c.Upsert(ctx, r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// a file another client named after something else
	if err := os.Rename(filepath.Join(c.Dir(), "a.ics"), filepath.Join(c.Dir(), "imported-123.ics")); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := c.List(ctx); len(got) != 0 {
		t.Errorf("reminders left: %+v", got)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("deleting a missing reminder: %v", err)
	}
	if err := c.Delete(ctx, "../x"); err == nil {
		t.Error("expected an error for a uid with a path separator")
	}
}

func TestListSkipsBrokenFiles(t *testing.T) {
	c := newTestCollection(t)
	if err := os.WriteFile(filepath.Join(c.Dir(), "junk.ics"), []byte("not a calendar"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected nothing, got %+v", got)
	}
}

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
		ok    bool
	}{
		{"-PT15M", 15 * time.Minute, true},
		{"-PT1H", time.Hour, true},
		{"PT0S", 0, true},
		{"-PT1H30M", 90 * time.Minute, true},
		{"PT5M", 0, false},
		{"-P1D", 0, false},
		{"garbage", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := parseTrigger(tt.value)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseTrigger(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.ok)
			}
		})
	}

	if got := formatTrigger(30 * time.Minute); got != "-PT30M" {
		t.Errorf("formatTrigger = %q", got)
	}
}
