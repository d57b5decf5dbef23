package ports

import "focuslist/internal/domain"

// SettingsStore persists user settings; Load returns defaults when nothing is saved yet
type SettingsStore interface {
	Load() (domain.Settings, error)
	Save(s domain.Settings) error
}

// Notifier shows a short transient message to the user
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(msg string)

// Notify calls f(msg)
func (f NotifierFunc) Notify(msg string) { f(msg) }
