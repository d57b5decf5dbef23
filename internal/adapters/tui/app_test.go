package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"focuslist/internal/adapters/tui/views"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

type staticRepo struct {
	data *domain.FocusData
}

func (r *staticRepo) Load(context.Context) (*domain.FocusData, error) {
	return r.data.Clone(), nil
}

func (r *staticRepo) Update(_ context.Context, fn ports.UpdateFunc) (*domain.FocusData, error) {
	d := r.data.Clone()
	if _, err := fn(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *staticRepo) Replace(context.Context, *domain.FocusData) error { return nil }

func (r *staticRepo) Path() string { return domain.DefaultFocusFile }

func TestAppRoutesViews(t *testing.T) {
	repo := &staticRepo{data: domain.NewFocusData("2026-10-12")}
	a := NewApp(&views.Services{Repo: repo, Settings: domain.DefaultSettings()})

	a.Update(views.SwitchToHelpMsg{})
	if a.State() != ViewHelp {
		t.Fatalf("state = %v, want help", a.State())
	}

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("closing help should return to the board")
	}
	a.Update(cmd())
	if a.State() != ViewBoard {
		t.Errorf("state = %v, want board", a.State())
	}

	a.Update(views.SwitchToFormMsg{Section: domain.SectionThisWeek})
	if a.State() != ViewForm {
		t.Errorf("state = %v, want form", a.State())
	}

	// typing q into the form must not quit
	if _, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Error("q in the form quit the app")
		}
	}

	if _, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("ctrl+c should quit")
	} else if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Error("ctrl+c should quit")
	}
}
