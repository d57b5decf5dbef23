package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"focuslist/internal/adapters/filesystem"
	"focuslist/internal/adapters/sqlite"
	"focuslist/internal/application/commands"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

func writeSettings(t *testing.T, vault, content string) {
	t.Helper()
	path := filepath.Join(vault, filesystem.SettingsFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenDefaults(t *testing.T) {
	a, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()

	if a.Sync != nil || a.Calendar != nil {
		t.Error("remote and calendar sync should be off by default")
	}
	if a.Repo != ports.FocusRepository(a.Local) {
		t.Error("without sync the local repository is used directly")
	}
	if err := a.StartSync(context.Background()); err != nil {
		t.Errorf("StartSync without remote: %v", err)
	}
	if jobs := a.Jobs(nil); jobs.Scan != nil || jobs.AutoSort == nil || jobs.Rollover == nil {
		t.Errorf("unexpected jobs: %+v", jobs)
	}
}

func TestOpenRejectsInvalidSettings(t *testing.T) {
	vault := t.TempDir()
	writeSettings(t, vault, "focusFile: focus.txt\n")

	if _, err := Open(vault, nil); err == nil {
		t.Error("expected an error for a non-markdown focus file")
	}
}

func TestRemoteAndCalendar(t *testing.T) {
	ctx := context.Background()
	vault := t.TempDir()
	writeSettings(t, vault, `
remote:
  enabled: true
  database: remote/focus.db
  email: me@example.com
  token: secret
calendar:
  enabled: true
  dir: calendar
`)
	t.Setenv("FOCUSLIST_REMOTE_TOKEN", "")

	a, err := Open(vault, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()

	if err := a.StartSync(ctx); err != nil {
		t.Fatalf("StartSync failed: %v", err)
	}

	add := commands.NewAddTaskCommand(a.Repo, a.Settings, "Dentist", domain.SectionThisWeek)
	add.DoDate = "2026-10-20"
	res, err := add.Execute(ctx)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	t.Run("saves reach the remote store", func(t *testing.T) {
		other, err := sqlite.Open(filepath.Join(vault, "remote", "focus.db"))
		if err != nil {
			t.Fatal(err)
		}
		defer other.Close()
		if _, err := other.Authenticate(ctx, a.Credentials()); err != nil {
			t.Fatal(err)
		}
		snap, err := other.Pull(ctx, "2026-10-15")
		if err != nil {
			t.Fatal(err)
		}
		if len(snap.Tasks) != 1 || snap.Tasks[0].ID != res.Task.ID {
			t.Errorf("remote tasks = %+v", snap.Tasks)
		}
	})

	t.Run("scan job mirrors dated tasks to the calendar", func(t *testing.T) {
		if err := a.scan(ctx); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(vault, "calendar", res.Task.ID+".ics")); err != nil {
			t.Errorf("reminder not written: %v", err)
		}
	})
}

func TestAutoSortHandsOverflowToHook(t *testing.T) {
	ctx := context.Background()
	var notes []string
	a, err := Open(t.TempDir(), ports.NotifierFunc(func(msg string) { notes = append(notes, msg) }))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()

	today := domain.Today(time.Now())
	_, err = a.Repo.Update(ctx, func(d *domain.FocusData) (bool, error) {
		for _, id := range []string{"a", "b", "c"} {
			d.AppendTask(domain.Task{ID: id, Title: id, Section: domain.SectionImmediate})
		}
		d.AppendTask(domain.Task{ID: "due", Title: "Due today", Section: domain.SectionThisWeek, DoDate: today})
		return true, nil
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := a.autoSort(ctx); err != nil {
		t.Fatalf("autoSort failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("notices without a hook = %v", notes)
	}

	var got []domain.Task
	a.OnOverflow = func(overflow []domain.Task) { got = overflow }
	if err := a.autoSort(ctx); err != nil {
		t.Fatalf("autoSort failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "due" || len(notes) != 1 {
		t.Errorf("overflow = %+v, notices = %v", got, notes)
	}
}
