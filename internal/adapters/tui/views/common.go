package views

import (
	"strings"

	"focuslist/internal/adapters/tui/styles"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// RenderMessage renders the current message, if any
func (s *ViewState) RenderMessage() string {
	if s.Message == "" {
		return ""
	}
	if s.MessageErr {
		return styles.ErrorMsg.Render(s.Message)
	}
	return styles.Success.Render(s.Message)
}

type helpEntry struct {
	key  string
	desc string
}

func renderHelpLine(entries []helpEntry) string {
	var parts []string
	for _, e := range entries {
		parts = append(parts, styles.HelpKey.Render(e.key)+" "+styles.HelpDesc.Render(e.desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}
