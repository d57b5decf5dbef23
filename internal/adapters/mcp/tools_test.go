package mcp

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

type memRepo struct {
	mu   sync.Mutex
	data *domain.FocusData
}

func (r *memRepo) Load(context.Context) (*domain.FocusData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Clone(), nil
}

func (r *memRepo) Update(_ context.Context, fn ports.UpdateFunc) (*domain.FocusData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.data.Clone()
	changed, err := fn(d)
	if err != nil {
		return nil, err
	}
	if changed {
		r.data = d
	}
	return d.Clone(), nil
}

func (r *memRepo) Replace(_ context.Context, d *domain.FocusData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = d.Clone()
	return nil
}

func (r *memRepo) Path() string { return "Weekly Focus.md" }

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned an error: %v", err)
	}
	var sb strings.Builder
	for _, c := range res.Content {
		if text, ok := c.(mcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), res.IsError
}

func TestAddAndList(t *testing.T) {
	repo := &memRepo{data: domain.NewFocusData("2026-10-12")}
	settings := domain.DefaultSettings()
	add := addHandler(repo, settings)

	for _, title := range []string{"Write report", "Call Sam", "Book flights"} {
		if msg, isErr := call(t, add, map[string]any{"title": title, "section": "immediate"}); isErr {
			t.Fatalf("add %q failed: %s", title, msg)
		}
	}

	t.Run("full immediate is reported as a tool error", func(t *testing.T) {
		msg, isErr := call(t, add, map[string]any{"title": "One more", "section": "immediate"})
		if !isErr {
			t.Errorf("expected a tool error, got %q", msg)
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		if _, isErr := call(t, add, map[string]any{"title": "x", "section": "someday"}); !isErr {
			t.Error("expected a tool error")
		}
	})

	out, isErr := call(t, listHandler(repo), map[string]any{"section": "immediate"})
	if isErr {
		t.Fatalf("list failed: %s", out)
	}
	for _, title := range []string{"Write report", "Call Sam", "Book flights"} {
		if !strings.Contains(out, title) {
			t.Errorf("listing misses %q:\n%s", title, out)
		}
	}
	if strings.Contains(out, "One more") {
		t.Error("rejected task was listed")
	}
}

func TestUpdateClearsOnlyGivenFields(t *testing.T) {
	data := domain.NewFocusData("2026-10-12")
	data.AppendTask(domain.Task{ID: "a", Title: "Call", Section: domain.SectionThisWeek, DoDate: "2026-10-16", URL: "https://example.com"})
	repo := &memRepo{data: data}

	if msg, isErr := call(t, updateHandler(repo), map[string]any{"id": "a", "url": ""}); isErr {
		t.Fatalf("update failed: %s", msg)
	}

	_, task, _ := repo.data.FindTask("a")
	if task.URL != "" {
		t.Errorf("url = %q, want cleared", task.URL)
	}
	if task.DoDate != "2026-10-16" || task.Title != "Call" {
		t.Errorf("untouched fields changed: %+v", task)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	repo := &memRepo{data: domain.NewFocusData("2026-10-12")}
	if _, isErr := call(t, searchHandler(repo), map[string]any{}); !isErr {
		t.Error("expected a tool error without a query")
	}
	out, isErr := call(t, searchHandler(repo), map[string]any{"query": "report"})
	if isErr || out != "No results found." {
		t.Errorf("search on an empty board = %q, %v", out, isErr)
	}
}
