package views

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

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

func (r *memRepo) snapshot() *domain.FocusData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Clone()
}

type recordingGate struct {
	calls []bool
}

func (g *recordingGate) SetGate(open bool) { g.calls = append(g.calls, open) }

func testServices(repo *memRepo) *Services {
	return &Services{
		Repo:     repo,
		Settings: domain.DefaultSettings(),
		Now: func() time.Time {
			return time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)
		},
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds each produced message back into m until nothing
// is left, returning the last message that m did not turn into a new command.
func drain(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Msg {
	t.Helper()
	var last tea.Msg
	for i := 0; cmd != nil; i++ {
		if i > 10 {
			t.Fatal("command chain did not settle")
		}
		last = cmd()
		if last == nil {
			return nil
		}
		_, cmd = m.Update(last)
	}
	return last
}
