package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"focuslist/internal/adapters/tui/styles"
	"focuslist/internal/application/commands"
	"focuslist/internal/domain"
)

const (
	fieldTitle = iota
	fieldSection
	fieldDate
	fieldTime
	fieldRepeat
	fieldURL
)

// TaskFormModel adds a new task or edits an existing one
type TaskFormModel struct {
	ViewState
	svc  *Services
	form *InputForm

	// editing is the task being edited, nil when adding
	editing *domain.Task
}

// NewTaskFormModel creates a new task form
func NewTaskFormModel(svc *Services) *TaskFormModel {
	return &TaskFormModel{svc: svc}
}

// Open resets the form for a new task in section, or for editing task
func (m *TaskFormModel) Open(task *domain.Task, section domain.Section) tea.Cmd {
	m.ClearMessage()
	m.editing = task

	var t domain.Task
	if task != nil {
		t = *task
		section = t.Section
	}
	repeat := ""
	if t.Recurrence != nil {
		repeat = t.Recurrence.String()
	}
	m.form = NewInputForm(
		NewInputField("Title", "What needs doing?", t.Title, 200),
		NewInputField("Section", "immediate, thisWeek or unscheduled", string(section), 20),
		NewInputField("Do date", "YYYY-MM-DD", t.DoDate, 10),
		NewInputField("Time", "HH:MM", t.DoTime, 5),
		NewInputField("Repeat", "days:N, weeks:N[:weekday] or months:N[:day]", repeat, 20),
		NewInputField("Link", "https://…", t.URL, 500),
	)
	return m.form.Init()
}

// Init implements tea.Model for the task form
func (m *TaskFormModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the form
func (m *TaskFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.form == nil {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, func() tea.Msg { return SwitchToBoardMsg{} }
		case key.Matches(msg, m.form.Keys.Submit):
			return m, m.submit()
		}
	}

	if m.form == nil {
		return m, nil
	}
	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *TaskFormModel) submit() tea.Cmd {
	section, err := domain.ParseSection(m.form.Value(fieldSection))
	if err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}
	if m.editing == nil {
		return m.add(section)
	}
	return m.update(*m.editing, section)
}

func (m *TaskFormModel) add(section domain.Section) tea.Cmd {
	cmd := commands.NewAddTaskCommand(m.svc.Repo, m.svc.Settings, m.form.Value(fieldTitle), section)
	cmd.DoDate = m.form.Value(fieldDate)
	cmd.DoTime = m.form.Value(fieldTime)
	cmd.Recurrence = m.form.Value(fieldRepeat)
	cmd.URL = m.form.Value(fieldURL)
	if err := cmd.Validate(); err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}

	return func() tea.Msg {
		res, err := cmd.Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return SwitchToBoardMsg{Message: res.Message}
	}
}

func (m *TaskFormModel) update(task domain.Task, section domain.Section) tea.Cmd {
	patch := commands.TaskPatch{
		Title:      m.form.Changed(fieldTitle),
		DoDate:     m.form.Changed(fieldDate),
		DoTime:     m.form.Changed(fieldTime),
		Recurrence: m.form.Changed(fieldRepeat),
		URL:        m.form.Changed(fieldURL),
	}
	update := commands.NewUpdateTaskCommand(m.svc.Repo, task.ID, patch)
	if err := update.Validate(); err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}
	svc := m.svc

	return func() tea.Msg {
		ctx := context.Background()
		var messages []string
		if patch != (commands.TaskPatch{}) {
			res, err := update.Execute(ctx)
			if err != nil {
				return errMsg{err}
			}
			messages = append(messages, res.Message)
		}
		if section != task.Section {
			res, err := commands.NewMoveTaskCommand(svc.Repo, svc.Settings, task.ID, section).Execute(ctx)
			if err != nil {
				return errMsg{err}
			}
			messages = append(messages, res.Message)
		}
		return SwitchToBoardMsg{Message: strings.Join(messages, "; ")}
	}
}

// View renders the form
func (m *TaskFormModel) View() string {
	var b strings.Builder
	title := "New task"
	submit := "add"
	if m.editing != nil {
		title = "Edit task"
		submit = "save"
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")
	if m.form != nil {
		b.WriteString(m.form.View())
	}
	if msg := m.RenderMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
		b.WriteString("\n")
	}
	if m.form != nil {
		b.WriteString("\n")
		b.WriteString(m.form.RenderHelp(submit))
	}
	return styles.App.Render(b.String())
}
