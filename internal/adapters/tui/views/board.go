package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focuslist/internal/adapters/tui/styles"
	"focuslist/internal/application/commands"
	"focuslist/internal/domain"
)

// BoardKeyMap defines key bindings for the board view
type BoardKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Immediate   key.Binding
	ThisWeek    key.Binding
	Unscheduled key.Binding
	New         key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Sort        key.Binding
	OpenLink    key.Binding
	CopyLink    key.Binding
	OpenNote    key.Binding
	OpenFocus   key.Binding
	Reload      key.Binding
	Help        key.Binding
	Quit        key.Binding
	Confirm     key.Binding
}

var BoardKeys = BoardKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("x", " "),
		key.WithHelp("x/space", "done"),
	),
	Immediate: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "to immediate"),
	),
	ThisWeek: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "to this week"),
	),
	Unscheduled: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "to unscheduled"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e", "enter"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	OpenLink: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open link"),
	),
	CopyLink: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	OpenNote: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "go to note"),
	),
	OpenFocus: key.NewBinding(
		key.WithKeys("E"),
		key.WithHelp("E", "edit document"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
}

type rowKind int

const (
	rowHabit rowKind = iota
	rowTask
)

type row struct {
	kind  rowKind
	habit domain.DailyHabit
	task  commands.TaskView
}

func (r row) id() string {
	if r.kind == rowHabit {
		return r.habit.ID
	}
	return r.task.ID
}

// BoardModel shows habits and the three task sections
type BoardModel struct {
	ViewState
	svc *Services

	data   *domain.FocusData
	rows   []row
	cursor int

	// pendingDelete holds the task id waiting for confirmation
	pendingDelete string
}

type boardLoadedMsg struct {
	result *commands.ListTasksResult
}

// NewBoardModel creates a new board model
func NewBoardModel(svc *Services) *BoardModel {
	return &BoardModel{svc: svc}
}

// Init loads the board
func (m *BoardModel) Init() tea.Cmd {
	return m.load
}

// Reload reloads the document from disk
func (m *BoardModel) Reload() tea.Cmd {
	return m.load
}

func (m *BoardModel) load() tea.Msg {
	cmd := commands.NewListTasksCommand(m.svc.Repo)
	cmd.Now = m.svc.Now
	result, err := cmd.Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return boardLoadedMsg{result}
}

// Update handles messages for the board
func (m *BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case boardLoadedMsg:
		m.setRows(msg.result)
		return m, nil

	case RefreshMsg:
		return m, m.load

	case NoticeMsg:
		m.SetMessage(msg.Text, msg.IsErr)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case successMsg:
		m.SetMessage(msg.message, false)
		return m, m.load

	case tea.KeyMsg:
		if m.pendingDelete != "" {
			id := m.pendingDelete
			m.pendingDelete = ""
			if key.Matches(msg, BoardKeys.Confirm) {
				return m, m.run(func(ctx context.Context) (string, error) {
					res, err := commands.NewDeleteTaskCommand(m.svc.Repo, id).Execute(ctx)
					if err != nil {
						return "", err
					}
					return res.Message, nil
				})
			}
			m.SetMessage("Delete cancelled", false)
			return m, nil
		}
		m.ClearMessage()
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *BoardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BoardKeys.Quit):
		return tea.Quit

	case key.Matches(msg, BoardKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil

	case key.Matches(msg, BoardKeys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return nil

	case key.Matches(msg, BoardKeys.Toggle):
		return m.toggle()

	case key.Matches(msg, BoardKeys.Immediate):
		return m.move(domain.SectionImmediate)

	case key.Matches(msg, BoardKeys.ThisWeek):
		return m.move(domain.SectionThisWeek)

	case key.Matches(msg, BoardKeys.Unscheduled):
		return m.move(domain.SectionUnscheduled)

	case key.Matches(msg, BoardKeys.New):
		section := domain.SectionUnscheduled
		if t := m.selectedTask(); t != nil {
			section = t.Section
		}
		return func() tea.Msg { return SwitchToFormMsg{Section: section} }

	case key.Matches(msg, BoardKeys.Edit):
		if t := m.selectedTask(); t != nil {
			task := t.Task
			return func() tea.Msg { return SwitchToFormMsg{Task: &task, Section: task.Section} }
		}
		return nil

	case key.Matches(msg, BoardKeys.Delete):
		if t := m.selectedTask(); t != nil {
			m.pendingDelete = t.ID
			m.SetMessage(fmt.Sprintf("Delete %q? y to confirm", shortTitle(t.Title)), true)
		}
		return nil

	case key.Matches(msg, BoardKeys.Sort):
		return m.sort()

	case key.Matches(msg, BoardKeys.OpenLink):
		return m.openLink()

	case key.Matches(msg, BoardKeys.CopyLink):
		return m.copyLink()

	case key.Matches(msg, BoardKeys.OpenNote):
		return m.openNote()

	case key.Matches(msg, BoardKeys.OpenFocus):
		path := filepath.Join(m.svc.VaultRoot, m.svc.Repo.Path())
		return func() tea.Msg { return OpenEditorMsg{Path: path} }

	case key.Matches(msg, BoardKeys.Reload):
		return m.load

	case key.Matches(msg, BoardKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}
	return nil
}

// run executes an action off the UI loop and reports its message
func (m *BoardModel) run(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		msg, err := fn(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return successMsg{msg}
	}
}

func (m *BoardModel) toggle() tea.Cmd {
	r := m.selected()
	if r == nil {
		return nil
	}
	if r.kind == rowHabit {
		id := r.habit.ID
		return m.run(func(ctx context.Context) (string, error) {
			res, err := commands.NewToggleHabitCommand(m.svc.Repo, id).Execute(ctx)
			if err != nil {
				return "", err
			}
			return res.Message, nil
		})
	}

	id := r.task.ID
	return m.run(func(ctx context.Context) (string, error) {
		cmd := commands.NewToggleCompleteCommand(m.svc.Repo, m.svc.Settings, id)
		cmd.Now = m.svc.Now
		cmd.Reflect = m.svc.Reflect
		res, err := cmd.Execute(ctx)
		if err != nil {
			return "", err
		}
		if res.NoteErr != nil {
			return res.Message + " (note not updated: " + res.NoteErr.Error() + ")", nil
		}
		return res.Message, nil
	})
}

func (m *BoardModel) move(to domain.Section) tea.Cmd {
	t := m.selectedTask()
	if t == nil || t.Section == to {
		return nil
	}
	id := t.ID
	return m.run(func(ctx context.Context) (string, error) {
		res, err := commands.NewMoveTaskCommand(m.svc.Repo, m.svc.Settings, id, to).Execute(ctx)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	})
}

func (m *BoardModel) sort() tea.Cmd {
	return func() tea.Msg {
		cmd := commands.NewAutoSortCommand(m.svc.Repo, m.svc.Settings)
		cmd.Now = m.svc.Now
		res, err := cmd.Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		if len(res.Overflow) > 0 {
			return SwitchToOverflowMsg{Overflow: res.Overflow}
		}
		return successMsg{res.Message}
	}
}

func (m *BoardModel) openLink() tea.Cmd {
	t := m.selectedTask()
	if t == nil || t.URL == "" {
		m.SetMessage("No link on this task", true)
		return nil
	}
	if m.svc.Obsidian == nil {
		m.SetMessage("Opening links is not available", true)
		return nil
	}
	url := t.URL
	return func() tea.Msg {
		if err := m.svc.Obsidian.OpenURL(url); err != nil {
			return errMsg{err}
		}
		return NoticeMsg{Text: "Opened " + url}
	}
}

func (m *BoardModel) copyLink() tea.Cmd {
	t := m.selectedTask()
	if t == nil || t.URL == "" {
		m.SetMessage("No link on this task", true)
		return nil
	}
	if m.svc.Copy == nil {
		m.SetMessage("Clipboard is not available", true)
		return nil
	}
	if err := m.svc.Copy(t.URL); err != nil {
		m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
		return nil
	}
	m.SetMessage("Copied "+t.URL, false)
	return nil
}

func (m *BoardModel) openNote() tea.Cmd {
	t := m.selectedTask()
	if t == nil || t.SourceFile == "" {
		m.SetMessage("Task was not imported from a note", true)
		return nil
	}
	if m.svc.Obsidian == nil {
		path := filepath.Join(m.svc.VaultRoot, t.SourceFile)
		line := t.SourceLine
		return func() tea.Msg { return OpenEditorMsg{Path: path, Line: line} }
	}
	file := t.SourceFile
	return func() tea.Msg {
		if err := m.svc.Obsidian.OpenNote(file); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *BoardModel) setRows(result *commands.ListTasksResult) {
	selectedID := ""
	if r := m.selected(); r != nil {
		selectedID = r.id()
	}

	m.data = result.Data
	m.rows = m.rows[:0]
	for _, h := range result.Data.Habits {
		m.rows = append(m.rows, row{kind: rowHabit, habit: h})
	}
	for _, t := range result.Tasks {
		m.rows = append(m.rows, row{kind: rowTask, task: t})
	}

	for i, r := range m.rows {
		if r.id() == selectedID {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *BoardModel) selected() *row {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return &m.rows[m.cursor]
	}
	return nil
}

func (m *BoardModel) selectedTask() *commands.TaskView {
	if r := m.selected(); r != nil && r.kind == rowTask {
		return &r.task
	}
	return nil
}

// View renders the board
func (m *BoardModel) View() string {
	if m.data == nil {
		if m.Message != "" {
			return styles.App.Render(m.RenderMessage())
		}
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Focus"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("Week of " + m.data.WeekOf))
	b.WriteString("\n")
	if len(m.data.Goals) > 0 {
		var goals []string
		for _, g := range m.data.Goals {
			goals = append(goals, g.Title)
		}
		b.WriteString(styles.Goal.Render("Goals: " + strings.Join(goals, " · ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	section := domain.Section("")
	for i, r := range m.rows {
		if r.kind == rowHabit {
			if i == 0 {
				b.WriteString(styles.SectionHeader.Render("Daily Habits"))
				b.WriteString("\n")
			}
		} else if r.task.Section != section {
			section = r.task.Section
			b.WriteString("\n")
			b.WriteString(m.renderHeader(section))
			b.WriteString("\n")
		}
		b.WriteString(m.renderRow(r, i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.rows) == 0 {
		b.WriteString(styles.MutedText.Render("Nothing here yet. Press n to add a task."))
		b.WriteString("\n")
	}

	if msg := m.RenderMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
	}

	b.WriteString("\n")
	b.WriteString(renderHelpLine([]helpEntry{
		{"j/k", "navigate"},
		{"x", "done"},
		{"1/2/3", "move"},
		{"n", "new"},
		{"e", "edit"},
		{"s", "sort"},
		{"?", "help"},
		{"q", "quit"},
	}))

	return styles.App.Render(b.String())
}

func (m *BoardModel) renderHeader(s domain.Section) string {
	title := s.Title()
	if s == domain.SectionImmediate {
		limit := m.svc.Settings.MaxImmediate
		if limit < 1 {
			limit = domain.DefaultMaxImmediate
		}
		title = fmt.Sprintf("%s (%d/%d)", title, m.data.IncompleteCount(s), limit)
	}
	return styles.SectionHeader.Foreground(styles.SectionColor(string(s))).Render(title)
}

func (m *BoardModel) renderRow(r row, selected bool) string {
	var text string
	style := styles.Row
	if r.kind == rowHabit {
		mark := "[ ]"
		if r.habit.CompletedToday {
			mark = "[x]"
			style = styles.RowDone
		}
		text = fmt.Sprintf("  %s %s", mark, r.habit.Title)
	} else {
		t := r.task
		text = "  [ ] " + t.Title
		var notes []string
		if t.DoDate != "" {
			when := t.DoDate
			if t.DoTime != "" {
				when += " " + t.DoTime
			}
			notes = append(notes, when)
		}
		if t.Recurrence != nil {
			notes = append(notes, "↻ "+t.Recurrence.String())
		}
		if t.Goal != "" {
			notes = append(notes, "◎ "+t.Goal)
		}
		if t.URL != "" {
			notes = append(notes, "🔗")
		}
		if t.SourceFile != "" {
			notes = append(notes, "📄 "+t.SourceFile)
		}
		if len(notes) > 0 && !selected {
			annotation := styles.Annotation
			if t.Overdue {
				annotation = styles.Overdue
			}
			return style.Render(text) + "  " + annotation.Render(strings.Join(notes, "  "))
		}
		if len(notes) > 0 {
			text += "  " + strings.Join(notes, "  ")
		}
	}

	if selected {
		return styles.RowSelected.Render(text)
	}
	return style.Render(text)
}

// shortTitle shortens a title for prompts
func shortTitle(title string) string {
	if lipgloss.Width(title) <= 40 {
		return title
	}
	return string([]rune(title)[:37]) + "..."
}
