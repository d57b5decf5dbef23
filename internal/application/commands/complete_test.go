package commands

import (
	"context"
	"errors"
	"testing"

	"focuslist/internal/application"
	"focuslist/internal/domain"
)

func TestToggleCompleteCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("archives under the current month", func(t *testing.T) {
		repo := newMemRepo(nil)
		repo.data.AppendTask(domain.Task{ID: "a", Title: "Ship it", Section: domain.SectionImmediate})
		cmd := NewToggleCompleteCommand(repo, testSettings(), "a")
		cmd.Now = fixedClock

		result, err := cmd.Execute(ctx)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		if !result.Found || !result.Completed || result.Next != nil {
			t.Errorf("unexpected result: %+v", result)
		}
		archived := repo.data.CompletedTasks["2026-10"]
		if len(archived) != 1 || archived[0].CompletedAt != "2026-10-15" || !archived[0].Completed {
			t.Errorf("archive = %+v", archived)
		}
		if len(repo.data.Tasks.Immediate) != 0 {
			t.Error("task should leave its section")
		}
	})

	t.Run("spawns the next occurrence of a recurring task", func(t *testing.T) {
		repo := newMemRepo(nil)
		rec, _ := domain.ParseRecurrence("weeks:1")
		repo.data.AppendTask(domain.Task{
			ID: "r", Title: "Water plants", Section: domain.SectionThisWeek,
			DoDate: "2026-10-15", Recurrence: rec, SourceFile: "notes.md", SourceLine: 4,
		})
		cmd := NewToggleCompleteCommand(repo, testSettings(), "r")
		cmd.Now = fixedClock
		cmd.NewID = sequentialIDs("next-")

		result, err := cmd.Execute(ctx)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		if result.Next == nil || result.Next.DoDate != "2026-10-22" || result.Next.ID != "next-1" {
			t.Fatalf("next = %+v", result.Next)
		}
		active := repo.data.Tasks.ThisWeek
		if len(active) != 1 || active[0].Completed || active[0].SourceFile != "" {
			t.Errorf("spawned task = %+v", active)
		}
		if !contains(result.Message, "2026-10-22") {
			t.Errorf("message = %q", result.Message)
		}
	})

	t.Run("restores an archived task", func(t *testing.T) {
		repo := newMemRepo(nil)
		repo.data.AppendTask(domain.Task{ID: "a", Title: "Ship it", Section: domain.SectionThisWeek})
		repo.data.Archive("a", "2026-10-01")

		result, err := NewToggleCompleteCommand(repo, testSettings(), "a").Execute(ctx)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		if result.Completed || result.Task.Completed || result.Task.CompletedAt != "" {
			t.Errorf("restored task = %+v", result.Task)
		}
		if len(repo.data.Tasks.ThisWeek) != 1 || len(repo.data.CompletedTasks) != 0 {
			t.Errorf("document after restore = %+v", repo.data)
		}
	})

	t.Run("restore into a full immediate section is rejected", func(t *testing.T) {
		repo := newMemRepo(nil)
		repo.data.AppendTask(domain.Task{ID: "old", Title: "Old", Section: domain.SectionImmediate})
		repo.data.Archive("old", "2026-10-01")
		for _, id := range []string{"a", "b", "c"} {
			repo.data.AppendTask(domain.Task{ID: id, Title: id, Section: domain.SectionImmediate})
		}

		_, err := NewToggleCompleteCommand(repo, testSettings(), "old").Execute(ctx)

		if !errors.Is(err, application.ErrCapacity) {
			t.Fatalf("expected capacity error, got %v", err)
		}
		if _, _, ok := repo.data.FindTask("old"); !ok || len(repo.data.CompletedTasks["2026-10"]) != 1 {
			t.Error("archived task must stay archived")
		}
	})

	t.Run("restore drops the untouched next occurrence", func(t *testing.T) {
		repo := newMemRepo(nil)
		rec, _ := domain.ParseRecurrence("weeks:1")
		repo.data.AppendTask(domain.Task{ID: "r", Title: "Water plants", Section: domain.SectionImmediate, DoDate: "2026-10-15", Recurrence: rec})
		for _, id := range []string{"a", "b"} {
			repo.data.AppendTask(domain.Task{ID: id, Title: id, Section: domain.SectionImmediate})
		}
		complete := NewToggleCompleteCommand(repo, testSettings(), "r")
		complete.Now = fixedClock
		complete.NewID = sequentialIDs("next-")
		if _, err := complete.Execute(ctx); err != nil {
			t.Fatalf("complete failed: %v", err)
		}

		result, err := NewToggleCompleteCommand(repo, testSettings(), "r").Execute(ctx)
		if err != nil {
			t.Fatalf("restore failed: %v", err)
		}

		if result.Dropped == nil || result.Dropped.ID != "next-1" {
			t.Fatalf("dropped = %+v", result.Dropped)
		}
		if _, _, ok := repo.data.FindTask("next-1"); ok {
			t.Error("spawned copy still present")
		}
		if got := repo.data.Tasks.Immediate; len(got) != 3 || got[2].ID != "r" {
			t.Errorf("immediate = %+v", got)
		}
	})

	t.Run("restore keeps an edited next occurrence", func(t *testing.T) {
		repo := newMemRepo(nil)
		rec, _ := domain.ParseRecurrence("days:1")
		repo.data.AppendTask(domain.Task{ID: "r", Title: "Stretch", Section: domain.SectionThisWeek, Recurrence: rec})
		complete := NewToggleCompleteCommand(repo, testSettings(), "r")
		complete.Now = fixedClock
		complete.NewID = sequentialIDs("next-")
		if _, err := complete.Execute(ctx); err != nil {
			t.Fatalf("complete failed: %v", err)
		}
		repo.data.Tasks.ThisWeek[0].URL = "https://example.com"

		result, err := NewToggleCompleteCommand(repo, testSettings(), "r").Execute(ctx)
		if err != nil {
			t.Fatalf("restore failed: %v", err)
		}

		if result.Dropped != nil || len(repo.data.Tasks.ThisWeek) != 2 {
			t.Errorf("dropped = %+v, this week = %+v", result.Dropped, repo.data.Tasks.ThisWeek)
		}
	})

	t.Run("note reflection", func(t *testing.T) {
		repo := newMemRepo(nil)
		repo.data.AppendTask(domain.Task{ID: "n", Title: "Call mom", Section: domain.SectionUnscheduled, SourceFile: "Daily.md", SourceLine: 1})
		repo.data.AppendTask(domain.Task{ID: "plain", Title: "Plain", Section: domain.SectionUnscheduled})
		var seen []domain.Task
		reflect := func(t domain.Task) (bool, error) {
			seen = append(seen, t)
			if t.Completed {
				return true, nil
			}
			return false, errors.New("note is read-only")
		}

		for _, id := range []string{"n", "plain"} {
			cmd := NewToggleCompleteCommand(repo, testSettings(), id)
			cmd.Now = fixedClock
			cmd.Reflect = reflect
			if _, err := cmd.Execute(ctx); err != nil {
				t.Fatalf("complete %s failed: %v", id, err)
			}
		}
		if len(seen) != 1 || seen[0].ID != "n" || !seen[0].Completed {
			t.Fatalf("reflected = %+v", seen)
		}

		cmd := NewToggleCompleteCommand(repo, testSettings(), "n")
		cmd.Reflect = reflect
		result, err := cmd.Execute(ctx)
		if err != nil {
			t.Fatalf("restore failed: %v", err)
		}
		if result.NoteErr == nil || result.NoteUpdated || result.Task.Completed {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("missing task is a silent no-op", func(t *testing.T) {
		repo := newMemRepo(nil)

		result, err := NewToggleCompleteCommand(repo, testSettings(), "gone").Execute(ctx)

		if err != nil || result.Found {
			t.Errorf("result = %+v, err = %v", result, err)
		}
		if repo.saves != 0 {
			t.Errorf("saves = %d, want 0", repo.saves)
		}
	})
}

func TestDeleteTaskCommand(t *testing.T) {
	repo := newMemRepo(nil)
	repo.data.AppendTask(domain.Task{ID: "a", Title: "A", Section: domain.SectionUnscheduled})

	result, err := NewDeleteTaskCommand(repo, "a").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Found || result.Task.Title != "A" {
		t.Errorf("result = %+v", result)
	}
	if _, _, ok := repo.data.FindTask("a"); ok {
		t.Error("task still present")
	}

	if _, err := NewDeleteTaskCommand(repo, "").Execute(context.Background()); err == nil {
		t.Error("expected validation error for empty id")
	}
}
