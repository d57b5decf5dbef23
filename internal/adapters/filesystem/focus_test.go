package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"focuslist/internal/domain"
)

func setupTestVault(t *testing.T) *Vault {
	t.Helper()
	return NewVault(t.TempDir())
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
}

func TestFocusRepository_LoadMissingDocument(t *testing.T) {
	repo := NewFocusRepository(setupTestVault(t), domain.DefaultFocusFile)
	repo.Now = fixedNow

	data, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if data.WeekOf != "2026-10-15" || len(data.AllTasks()) != 0 {
		t.Errorf("expected empty document dated today, got %+v", data)
	}
}

func TestFocusRepository_UpdatePersists(t *testing.T) {
	vault := setupTestVault(t)
	repo := NewFocusRepository(vault, "Focus/Weekly Focus.md")
	repo.Now = fixedNow
	ctx := context.Background()

	_, err := repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		d.AppendTask(domain.Task{ID: "a", Title: "Write tests", Section: domain.SectionImmediate})
		return true, nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(vault.Root(), "Focus", "Weekly Focus.md"))
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	if !strings.Contains(string(content), "- [ ] Write tests ^a") {
		t.Errorf("unexpected document:\n%s", content)
	}

	reloaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(reloaded.Tasks.Immediate) != 1 || reloaded.Tasks.Immediate[0].Title != "Write tests" {
		t.Errorf("reloaded document = %+v", reloaded.Tasks)
	}
}

func TestFocusRepository_UpdateWithoutChangeDoesNotWrite(t *testing.T) {
	vault := setupTestVault(t)
	repo := NewFocusRepository(vault, domain.DefaultFocusFile)

	_, err := repo.Update(context.Background(), func(d *domain.FocusData) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if vault.Exists(domain.DefaultFocusFile) {
		t.Error("unchanged update should not create the document")
	}
}

func TestFocusRepository_UpdateErrorAborts(t *testing.T) {
	vault := setupTestVault(t)
	repo := NewFocusRepository(vault, domain.DefaultFocusFile)

	_, err := repo.Update(context.Background(), func(d *domain.FocusData) (bool, error) {
		d.AppendTask(domain.Task{ID: "a", Title: "x"})
		return true, fmt.Errorf("boom")
	})
	if err == nil {
		t.Fatal("expected the callback error")
	}
	if vault.Exists(domain.DefaultFocusFile) {
		t.Error("failed update should not write")
	}
}

func TestFocusRepository_ConcurrentUpdates(t *testing.T) {
	repo := NewFocusRepository(setupTestVault(t), domain.DefaultFocusFile)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
				d.AppendTask(domain.Task{ID: fmt.Sprintf("t%d", i), Title: fmt.Sprintf("Task %d", i)})
				return true, nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	data, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := len(data.Tasks.Unscheduled); got != 10 {
		t.Errorf("expected 10 tasks after concurrent updates, got %d", got)
	}
}

func TestFocusRepository_Replace(t *testing.T) {
	repo := NewFocusRepository(setupTestVault(t), domain.DefaultFocusFile)
	ctx := context.Background()

	d := domain.NewFocusData("2026-10-12")
	d.AddGoal(domain.WeeklyGoal{ID: "g", Title: "Goal"})
	if err := repo.Replace(ctx, d); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.WeekOf != "2026-10-12" || len(got.Goals) != 1 {
		t.Errorf("replaced document = %+v", got)
	}
}
