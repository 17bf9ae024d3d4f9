package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
	"github.com/julianstephens/habitual/internal/tui/components/stats"
)

// Session is the login state the TUI drives
type Session interface {
	IsAuthenticated() bool
	User() (models.User, bool)
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Err() string
	ClearError()
}

// HabitService provides cached habit queries and mutations
type HabitService interface {
	Habits(ctx context.Context) ([]models.Habit, error)
	Stats(ctx context.Context) (models.HabitStats, error)
	Create(ctx context.Context, name, description string) (models.Habit, error)
	Delete(ctx context.Context, id int) error
	Toggle(ctx context.Context, id int, completed bool) (models.Habit, error)
	Refresh()
}

// UpdateStatus reports whether the server requires a newer client
type UpdateStatus interface {
	UpdateRequired() bool
	ServerVersion() string
	Current() string
}

// UpdateRequiredMsg is sent by the version poller when the client is out of date
type UpdateRequiredMsg struct {
	ServerVersion string
}

type pendingDelete struct {
	ID   int
	Name string
}

type Model struct {
	session Session
	habits  HabitService
	updates UpdateStatus

	state       constants.SessionState
	keys        KeyMap
	help        help.Model
	spinner     spinner.Model
	habitList   habitlist.Model
	statsModel  stats.Model
	form        *huh.Form
	loginForm   *LoginFormModel
	habitForm   *HabitFormModel
	toDelete    *pendingDelete
	formError   string
	status      string
	statusIsErr bool

	// epoch changes on login and logout; results tagged with an older epoch
	// belong to a previous session and are dropped
	epoch         int
	loadingList   bool
	loadingStats  bool
	submitting    bool
	serverVersion string
	reload        bool
	quitting      bool
	width         int
	height        int
}

func NewModel(session Session, habits HabitService, updates UpdateStatus) Model {
	m := Model{
		session:    session,
		habits:     habits,
		updates:    updates,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		habitList:  habitlist.New(nil, 0, 0),
		statsModel: stats.New(0),
	}

	switch {
	case updates != nil && updates.UpdateRequired():
		m.state = constants.StateUpdateRequired
		m.serverVersion = updates.ServerVersion()
	case session.IsAuthenticated():
		m.state = constants.StateHabits
		m.loadingList = true
		m.loadingStats = true
	default:
		m.enterLogin()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	switch m.state {
	case constants.StateLogin:
		cmds = append(cmds, m.form.Init())
	case constants.StateHabits:
		cmds = append(cmds, m.loadHabits(), m.loadStats())
	}
	return tea.Batch(cmds...)
}

// ReloadRequested reports whether the user chose to reload from the
// update-required dialog
func (m Model) ReloadRequested() bool {
	return m.reload
}

func (m Model) State() constants.SessionState {
	return m.state
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateHabits:
		return []key.Binding{m.keys.Toggle, m.keys.Add, m.keys.Delete, m.keys.Refresh, m.keys.Logout, m.keys.Quit, m.keys.Help}
	case constants.StateConfirmDelete:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	case constants.StateUpdateRequired:
		return []key.Binding{m.keys.Reload}
	}
	return nil
}

func (m Model) FullHelp() [][]key.Binding {
	if m.state != constants.StateHabits {
		return [][]key.Binding{m.ShortHelp()}
	}
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Toggle},
		{m.keys.Add, m.keys.Delete, m.keys.Refresh},
		{m.keys.Logout, m.keys.Quit, m.keys.Help},
	}
}

func (m *Model) enterLogin() {
	m.state = constants.StateLogin
	m.loginForm = &LoginFormModel{}
	m.form = newLoginForm(m.loginForm)
	m.submitting = false
}

func (m Model) busy() bool {
	return m.loadingList || m.loadingStats || m.submitting
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusIsErr = isErr
}
