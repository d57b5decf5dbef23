package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestVault_WalkSkipsHiddenFolders(t *testing.T) {
	vault := setupTestVault(t)
	writeFile(t, vault.Root(), "Projects/plan.md", "- [ ] a")
	writeFile(t, vault.Root(), ".obsidian/workspace.md", "- [ ] hidden")
	writeFile(t, vault.Root(), "inbox.md", "")

	var files, folders []string
	err := vault.Walk(func(e ports.Entry) error {
		if e.IsFolder() {
			folders = append(folders, e.Path)
		} else {
			files = append(files, e.Path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	slices.Sort(files)
	if !slices.Equal(files, []string{"Projects/plan.md", "inbox.md"}) {
		t.Errorf("files = %v", files)
	}
	if !slices.Equal(folders, []string{"Projects"}) {
		t.Errorf("folders = %v", folders)
	}
}

func TestVault_ReadWriteStat(t *testing.T) {
	vault := setupTestVault(t)

	if _, err := vault.Read("missing.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
	if err := vault.Write("Reviews/2026-10-15.md", "# Review\n"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := vault.Read("Reviews/2026-10-15.md")
	if err != nil || got != "# Review\n" {
		t.Errorf("Read = %q, %v", got, err)
	}
	entry, err := vault.Stat("Reviews")
	if err != nil || entry.Kind != ports.EntryFolder {
		t.Errorf("Stat = %+v, %v", entry, err)
	}
}

func TestSettingsStore(t *testing.T) {
	vault := setupTestVault(t)
	store := NewSettingsStore(vault)

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.FocusFile != domain.DefaultFocusFile || settings.MaxImmediate != domain.DefaultMaxImmediate {
		t.Errorf("unexpected defaults: %+v", settings)
	}
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	store := NewSettingsStore(setupTestVault(t))

	want := domain.DefaultSettings()
	want.MaxImmediate = 5
	want.Scan = domain.ScanSettings{Enabled: true, Tag: "#todo", ExcludeFolders: []string{"Archive"}}
	want.Calendar = domain.CalendarSettings{Enabled: true, Dir: "/tmp/cal", Alert: domain.Alert15m}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.MaxImmediate != 5 || got.Scan.Tag != "#todo" || got.Calendar.Alert != domain.Alert15m {
		t.Errorf("loaded settings = %+v", got)
	}
	if !slices.Equal(got.Scan.ExcludeFolders, []string{"Archive"}) {
		t.Errorf("exclude folders = %v", got.Scan.ExcludeFolders)
	}

	bad := want
	bad.Review.Time = "5pm"
	if err := store.Save(bad); err == nil {
		t.Error("expected validation error for bad review time")
	}
}

func TestPollingWatcher_Diff(t *testing.T) {
	w := NewPollingWatcher(setupTestVault(t), time.Second)
	w.Ignore = func(p string) bool { return p == "Weekly Focus.md" }
	t0 := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	before := map[string]time.Time{"a.md": t0, "b.md": t0, "gone.md": t0, "Weekly Focus.md": t0}
	after := map[string]time.Time{"a.md": t0, "b.md": t0.Add(time.Second), "new.md": t0, "Weekly Focus.md": t0.Add(time.Second)}

	got := w.Diff(before, after)
	if want := []string{"b.md", "gone.md", "new.md"}; !slices.Equal(got, want) {
		t.Errorf("Diff() = %v, want %v", got, want)
	}
}

func TestPollingWatcher_Snapshot(t *testing.T) {
	vault := setupTestVault(t)
	writeFile(t, vault.Root(), "notes/a.md", "x")
	writeFile(t, vault.Root(), "notes/image.png", "x")

	snap := NewPollingWatcher(vault, time.Second).Snapshot()
	if _, ok := snap["notes/a.md"]; !ok || len(snap) != 1 {
		t.Errorf("snapshot = %v", snap)
	}
}
