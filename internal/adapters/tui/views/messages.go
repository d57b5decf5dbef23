package views

import "focuslist/internal/domain"

// RefreshMsg asks the board to reload, e.g. after the focus file changed on disk
type RefreshMsg struct{}

// NoticeMsg shows a transient message from a background job
type NoticeMsg struct {
	Text  string
	IsErr bool
}

// SwitchToFormMsg opens the task form; Task is nil for a new task
type SwitchToFormMsg struct {
	Task    *domain.Task
	Section domain.Section
}

// SwitchToOverflowMsg opens the overflow decision for tasks that did not fit
type SwitchToOverflowMsg struct {
	Overflow []domain.Task
}

// SwitchToHelpMsg opens the help view
type SwitchToHelpMsg struct{}

// SwitchToBoardMsg returns to the board, optionally with a message
type SwitchToBoardMsg struct {
	Message string
}

// OpenEditorMsg suspends the TUI and opens path in the editor
type OpenEditorMsg struct {
	Path string
	Line int
}

type errMsg struct {
	err error
}

type successMsg struct {
	message string
}
