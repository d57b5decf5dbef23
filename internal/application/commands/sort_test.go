package commands

import (
	"context"
	"testing"

	"focuslist/internal/domain"
)

func TestRolloverCommand(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(domain.NewFocusData("2026-10-05"))
	repo.data.AppendTask(domain.Task{ID: "i", Title: "i", Section: domain.SectionImmediate})
	repo.data.AppendTask(domain.Task{ID: "w", Title: "w", Section: domain.SectionThisWeek})

	cmd := NewRolloverCommand(repo, testSettings())
	cmd.Now = fixedClock

	result, err := cmd.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.RolledOver || result.Moved != 3 {
		t.Errorf("result = %+v", result)
	}
	if repo.data.WeekOf != "2026-10-15" {
		t.Errorf("weekOf = %q", repo.data.WeekOf)
	}
	// the cascade is sequential, so the immediate task ends up in unscheduled too
	if len(repo.data.Tasks.Immediate) != 0 || len(repo.data.Tasks.ThisWeek) != 0 {
		t.Errorf("sections = %+v", repo.data.Tasks)
	}
	if got := taskIDs(repo.data.Tasks.Unscheduled); len(got) != 2 || got[0] != "w" || got[1] != "i" {
		t.Errorf("unscheduled = %v", got)
	}

	onlyImmediate := testSettings()
	onlyImmediate.RolloverThisWeek = false
	repo2 := newMemRepo(domain.NewFocusData("2026-10-05"))
	repo2.data.AppendTask(domain.Task{ID: "i", Title: "i", Section: domain.SectionImmediate})
	cmd2 := NewRolloverCommand(repo2, onlyImmediate)
	cmd2.Now = fixedClock
	if _, err := cmd2.Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(repo2.data.Tasks.ThisWeek) != 1 {
		t.Errorf("this week = %+v", repo2.data.Tasks.ThisWeek)
	}

	again, err := cmd.Execute(ctx)
	if err != nil || again.RolledOver {
		t.Errorf("second rollover in the same week: %+v, %v", again, err)
	}
}

func TestAutoSortCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("overflow stays in this week", func(t *testing.T) {
		repo := newMemRepo(nil)
		repo.data.AppendTask(domain.Task{ID: "i1", Title: "i1", Section: domain.SectionImmediate})
		repo.data.AppendTask(domain.Task{ID: "i2", Title: "i2", Section: domain.SectionImmediate})
		for _, id := range []string{"d1", "d2"} {
			repo.data.AppendTask(domain.Task{ID: id, Title: id, Section: domain.SectionThisWeek, DoDate: "2026-10-15"})
		}
		cmd := NewAutoSortCommand(repo, testSettings())
		cmd.Now = fixedClock

		result, err := cmd.Execute(ctx)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		if len(result.Promoted) != 1 || len(result.Overflow) != 1 {
			t.Fatalf("promoted = %d, overflow = %d", len(result.Promoted), len(result.Overflow))
		}
		if got := repo.data.IncompleteCount(domain.SectionImmediate); got != 3 {
			t.Errorf("immediate count = %d", got)
		}
		if _, task, _ := repo.data.FindTask(result.Overflow[0].ID); task.Section != domain.SectionThisWeek {
			t.Errorf("overflow task moved to %s", task.Section)
		}
		if !contains(result.Message, "did not fit") {
			t.Errorf("message = %q", result.Message)
		}
	})

	t.Run("nothing to do does not save", func(t *testing.T) {
		repo := newMemRepo(nil)
		repo.data.AppendTask(domain.Task{ID: "w", Title: "w", Section: domain.SectionThisWeek, DoDate: "2026-10-20"})
		cmd := NewAutoSortCommand(repo, testSettings())
		cmd.Now = fixedClock

		if _, err := cmd.Execute(ctx); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if repo.saves != 0 {
			t.Errorf("saves = %d, want 0", repo.saves)
		}
	})
}

func TestResolveOverflowCommand(t *testing.T) {
	ctx := context.Background()
	setup := func() *memRepo {
		repo := fullImmediate()
		repo.data.AppendTask(domain.Task{ID: "d1", Title: "d1", Section: domain.SectionThisWeek, DoDate: "2026-10-15"})
		repo.data.AppendTask(domain.Task{ID: "d2", Title: "d2", Section: domain.SectionThisWeek, DoDate: "2026-10-15"})
		return repo
	}

	t.Run("demote makes room", func(t *testing.T) {
		repo := setup()

		result, err := NewResolveOverflowCommand(repo, testSettings(), []string{"d1", "d2"}, []string{"i1"}, false).Execute(ctx)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		if len(result.Promoted) != 1 || result.Promoted[0] != "d1" {
			t.Errorf("promoted = %v", result.Promoted)
		}
		if len(result.Remaining) != 1 || result.Remaining[0] != "d2" {
			t.Errorf("remaining = %v", result.Remaining)
		}
		if _, task, _ := repo.data.FindTask("i1"); task.Section != domain.SectionThisWeek {
			t.Errorf("demoted task in %s", task.Section)
		}
	})

	t.Run("raised limit promotes everything once", func(t *testing.T) {
		repo := setup()

		result, err := NewResolveOverflowCommand(repo, testSettings(), []string{"d1", "d2"}, nil, true).Execute(ctx)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		if len(result.Promoted) != 2 || len(result.Remaining) != 0 {
			t.Errorf("result = %+v", result)
		}
		if got := repo.data.IncompleteCount(domain.SectionImmediate); got != 5 {
			t.Errorf("immediate count = %d", got)
		}
	})

	t.Run("empty decision", func(t *testing.T) {
		repo := setup()

		result, err := NewResolveOverflowCommand(repo, testSettings(), nil, nil, false).Execute(ctx)

		if err != nil || result.Message != "Nothing to resolve" || repo.saves != 0 {
			t.Errorf("result = %+v, err = %v", result, err)
		}
	})
}

func taskIDs(tasks []domain.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
