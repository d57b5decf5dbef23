package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"focuslist/internal/adapters/tui/styles"
	"focuslist/internal/application/commands"
	"focuslist/internal/domain"
)

// OverflowKeyMap defines key bindings for the overflow decision
type OverflowKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Mark   key.Binding
	Raise  key.Binding
	Apply  key.Binding
	Cancel key.Binding
}

var OverflowKeys = OverflowKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Mark: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "mark"),
	),
	Raise: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "raise limit"),
	),
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "decide later"),
	),
}

// OverflowModel asks which immediate tasks to demote and which of today's
// overflow tasks to promote. Remote pulls are held back while it is open.
type OverflowModel struct {
	ViewState
	svc *Services

	immediate []domain.Task
	overflow  []domain.Task
	marked    map[string]bool
	raise     bool
	cursor    int
}

type overflowLoadedMsg struct {
	immediate []domain.Task
}

// NewOverflowModel creates a new overflow model
func NewOverflowModel(svc *Services) *OverflowModel {
	return &OverflowModel{svc: svc}
}

// Open starts a decision over the given overflow tasks
func (m *OverflowModel) Open(overflow []domain.Task) tea.Cmd {
	m.svc.setGate(false)
	m.ClearMessage()
	m.overflow = overflow
	m.immediate = nil
	m.raise = false
	m.cursor = 0
	m.marked = map[string]bool{}
	for _, t := range overflow {
		m.marked[t.ID] = true
	}

	return func() tea.Msg {
		data, err := m.svc.Repo.Load(context.Background())
		if err != nil {
			return errMsg{err}
		}
		var open []domain.Task
		for _, t := range data.Tasks.Immediate {
			if !t.Completed {
				open = append(open, t)
			}
		}
		return overflowLoadedMsg{immediate: open}
	}
}

func (m *OverflowModel) close(message string) tea.Cmd {
	m.svc.setGate(true)
	return func() tea.Msg { return SwitchToBoardMsg{Message: message} }
}

// Init implements tea.Model for the overflow view
func (m *OverflowModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the overflow decision
func (m *OverflowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case overflowLoadedMsg:
		m.immediate = msg.immediate
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, OverflowKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, OverflowKeys.Down):
			if m.cursor < m.rowCount()-1 {
				m.cursor++
			}
		case key.Matches(msg, OverflowKeys.Mark):
			if t := m.taskAt(m.cursor); t != nil {
				m.marked[t.ID] = !m.marked[t.ID]
			}
		case key.Matches(msg, OverflowKeys.Raise):
			m.raise = !m.raise
		case key.Matches(msg, OverflowKeys.Apply):
			return m, m.apply()
		case key.Matches(msg, OverflowKeys.Cancel):
			return m, m.close("Overflow left in This Week")
		}
	}
	return m, nil
}

// Decision returns the ids marked for promotion and demotion
func (m *OverflowModel) Decision() (promote, demote []string) {
	for _, t := range m.overflow {
		if m.marked[t.ID] {
			promote = append(promote, t.ID)
		}
	}
	for _, t := range m.immediate {
		if m.marked[t.ID] {
			demote = append(demote, t.ID)
		}
	}
	return promote, demote
}

func (m *OverflowModel) apply() tea.Cmd {
	promote, demote := m.Decision()
	cmd := commands.NewResolveOverflowCommand(m.svc.Repo, m.svc.Settings, promote, demote, m.raise)
	svc := m.svc
	return func() tea.Msg {
		res, err := cmd.Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		svc.setGate(true)
		return SwitchToBoardMsg{Message: res.Message}
	}
}

func (m *OverflowModel) rowCount() int {
	return len(m.immediate) + len(m.overflow)
}

func (m *OverflowModel) taskAt(i int) *domain.Task {
	switch {
	case i < 0:
		return nil
	case i < len(m.immediate):
		return &m.immediate[i]
	case i < m.rowCount():
		return &m.overflow[i-len(m.immediate)]
	}
	return nil
}

// View renders the decision
func (m *OverflowModel) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Immediate is full"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d tasks due today did not fit. Mark tasks to demote or promote.", len(m.overflow))))
	b.WriteString("\n\n")

	b.WriteString(styles.SectionHeader.Render("Demote from Immediate"))
	b.WriteString("\n")
	for i := range m.immediate {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.SectionHeader.Render("Promote (due today)"))
	b.WriteString("\n")
	for i := range m.overflow {
		b.WriteString(m.renderRow(len(m.immediate) + i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	raise := "off"
	if m.raise {
		raise = "on"
	}
	b.WriteString(styles.MutedText.Render("Raise limit for this decision: " + raise))
	b.WriteString("\n")
	if msg := m.RenderMessage(); msg != "" {
		b.WriteString(msg)
		b.WriteString("\n")
	}
	b.WriteString(renderHelpLine([]helpEntry{
		{"space", "mark"},
		{"l", "raise limit"},
		{"enter", "apply"},
		{"esc", "decide later"},
	}))

	return styles.App.Render(styles.Modal.Render(b.String()))
}

func (m *OverflowModel) renderRow(i int) string {
	t := m.taskAt(i)
	mark := "[ ]"
	if m.marked[t.ID] {
		mark = "[x]"
	}
	text := fmt.Sprintf("  %s %s", mark, t.Title)
	if i == m.cursor {
		return styles.RowSelected.Render(text)
	}
	return styles.Row.Render(text)
}
