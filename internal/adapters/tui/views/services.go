package views

import (
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// SyncGate pauses applying remote pulls while the user is mid-decision
type SyncGate interface {
	SetGate(open bool)
}

// Services bundles what the views act on. Optional collaborators may be nil.
type Services struct {
	Repo      ports.FocusRepository
	Settings  domain.Settings
	VaultRoot string

	Gate     SyncGate
	Editor   ports.EditorOpener
	Obsidian ports.ObsidianOpener

	// Reflect mirrors a completion toggle back into the note the task came from
	Reflect func(t domain.Task) (bool, error)

	// Copy puts text on the system clipboard
	Copy func(text string) error

	Now func() time.Time
}

func (s *Services) setGate(open bool) {
	if s.Gate != nil {
		s.Gate.SetGate(open)
	}
}
