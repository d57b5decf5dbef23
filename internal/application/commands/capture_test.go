package commands

import (
	"context"
	"testing"

	"focuslist/internal/domain"
)

func TestParseCaptureLines(t *testing.T) {
	text := "# Inbox\n" +
		"- [ ] Buy milk 📅 2026-10-16\n" +
		"- [x] Already done\n" +
		"* [ ] Read paper 🔗 https://example.com/p ^lq3x8k2abc\n" +
		"- [ ]   \n" +
		"plain text\n"

	tasks := ParseCaptureLines(text)

	if len(tasks) != 2 {
		t.Fatalf("got %d tasks: %+v", len(tasks), tasks)
	}
	if tasks[0].Title != "Buy milk" || tasks[0].DoDate != "2026-10-16" {
		t.Errorf("first = %+v", tasks[0])
	}
	if tasks[1].URL != "https://example.com/p" || tasks[1].ID != "lq3x8k2abc" {
		t.Errorf("second = %+v", tasks[1])
	}
}

func TestCaptureImportCommand(t *testing.T) {
	ctx := context.Background()
	settings := testSettings()
	settings.CaptureFile = "Inbox.md"
	settings.CaptureSection = domain.SectionImmediate

	canonical := domain.NewID()
	repo := newMemRepo(nil)
	repo.data.AppendTask(domain.Task{ID: "i1", Title: "i1", Section: domain.SectionImmediate})
	repo.data.AppendTask(domain.Task{ID: "i2", Title: "i2", Section: domain.SectionImmediate})
	vault := newMemVault(map[string]string{
		"Inbox.md": "- [ ] First ^" + canonical + "\n- [ ] Second ^legacy\n- [ ] Third ^" + canonical + "\n",
	})

	cmd := NewCaptureImportCommand(repo, vault, settings)
	cmd.NewID = sequentialIDs("new-")
	result, err := cmd.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Imported) != 3 || result.FellBack != 2 {
		t.Fatalf("result = %+v", result)
	}
	got := []string{result.Imported[0].ID, result.Imported[1].ID, result.Imported[2].ID}
	want := []string{canonical, "new-1", "new-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids = %v, want %v", got, want)
			break
		}
	}
	if repo.data.IncompleteCount(domain.SectionImmediate) != 3 || len(repo.data.Tasks.Unscheduled) != 2 {
		t.Errorf("sections = %+v", repo.data.Tasks)
	}
	if vault.files["Inbox.md"] != "" {
		t.Errorf("capture file not cleared: %q", vault.files["Inbox.md"])
	}

	t.Run("missing capture file", func(t *testing.T) {
		result, err := NewCaptureImportCommand(repo, newMemVault(nil), settings).Execute(ctx)
		if err != nil || len(result.Imported) != 0 {
			t.Errorf("result = %+v, err = %v", result, err)
		}
	})
}

// lateVault lets the bridge append to the capture file right after it is read
type lateVault struct {
	*memVault
	late  string
	reads int
}

func (v *lateVault) Read(path string) (string, error) {
	text, err := v.memVault.Read(path)
	v.reads++
	if v.reads == 1 {
		v.files[path] += v.late
	}
	return text, err
}

func TestCaptureImportCommand_KeepsLinesAddedWhileImporting(t *testing.T) {
	ctx := context.Background()
	settings := testSettings()
	settings.CaptureFile = "Inbox.md"
	repo := newMemRepo(nil)
	vault := &lateVault{
		memVault: newMemVault(map[string]string{"Inbox.md": "- [ ] A\n"}),
		late:     "- [ ] B\n",
	}

	cmd := NewCaptureImportCommand(repo, vault, settings)
	cmd.NewID = sequentialIDs("c-")
	result, err := cmd.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(result.Imported) != 1 || result.Imported[0].Title != "A" {
		t.Fatalf("imported = %+v", result.Imported)
	}
	if vault.files["Inbox.md"] != "- [ ] B\n" {
		t.Fatalf("capture file = %q", vault.files["Inbox.md"])
	}

	result, err = cmd.Execute(ctx)
	if err != nil || len(result.Imported) != 1 || result.Imported[0].Title != "B" {
		t.Fatalf("second import = %+v, %v", result, err)
	}
	if vault.files["Inbox.md"] != "" || len(repo.data.Tasks.Unscheduled) != 2 {
		t.Errorf("capture file = %q, unscheduled = %+v", vault.files["Inbox.md"], repo.data.Tasks.Unscheduled)
	}
}

func TestDropLines(t *testing.T) {
	got := dropLines("- [ ] B\n- [ ] A\n- [ ] A\n", "- [ ] A\n")
	if got != "- [ ] B\n- [ ] A" {
		t.Errorf("dropLines = %q", got)
	}
}
