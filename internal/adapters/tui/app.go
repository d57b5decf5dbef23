package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"focuslist/internal/adapters/tui/views"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewForm
	ViewOverflow
	ViewHelp
)

// App is the main TUI application model
type App struct {
	svc *views.Services

	state    ViewState
	board    *views.BoardModel
	form     *views.TaskFormModel
	overflow *views.OverflowModel
	help     *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(svc *views.Services) *App {
	return &App{
		svc:      svc,
		state:    ViewBoard,
		board:    views.NewBoardModel(svc),
		form:     views.NewTaskFormModel(svc),
		overflow: views.NewOverflowModel(svc),
		help:     views.NewHelpModel(),
	}
}

// State returns the view currently shown
func (a *App) State() ViewState {
	return a.state
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.board.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.board.SetSize(msg.Width, msg.Height)
		a.form.SetSize(msg.Width, msg.Height)
		a.overflow.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	// Background jobs always talk to the board, whatever view is open
	case views.RefreshMsg, views.NoticeMsg:
		_, cmd := a.board.Update(msg)
		return a, cmd

	case views.SwitchToFormMsg:
		a.state = ViewForm
		return a, a.form.Open(msg.Task, msg.Section)

	case views.SwitchToOverflowMsg:
		if a.state == ViewOverflow {
			return a, nil
		}
		a.state = ViewOverflow
		return a, a.overflow.Open(msg.Overflow)

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBoardMsg:
		a.state = ViewBoard
		if msg.Message != "" {
			a.board.SetMessage(msg.Message, false)
		}
		return a, a.board.Reload()

	case views.OpenEditorMsg:
		a.state = ViewBoard
		return a, a.openEditor(msg.Path, msg.Line)

	case editorFinishedMsg:
		if msg.err != nil {
			a.board.SetMessage(msg.err.Error(), true)
		}
		return a, a.board.Reload()
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBoard:
		_, cmd = a.board.Update(msg)
	case ViewForm:
		_, cmd = a.form.Update(msg)
	case ViewOverflow:
		_, cmd = a.overflow.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(path string, line int) tea.Cmd {
	if a.svc.Editor == nil {
		return nil
	}

	cmd, err := a.svc.Editor.Command(path, line)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewForm:
		return a.form.View()
	case ViewOverflow:
		return a.overflow.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.board.View()
	}
}
