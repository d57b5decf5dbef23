package ports

import "os/exec"

// EditorOpener opens the focus document, or any vault note, in an external editor
type EditorOpener interface {
	// OpenFile opens path in $EDITOR, at line when the editor supports it
	OpenFile(path string, line int) error

	// Command returns the editor process for path, for use with tea.ExecProcess
	Command(path string, line int) (*exec.Cmd, error)
}
