package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cache"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case UpdateRequiredMsg:
		if m.state != constants.StateUpdateRequired {
			logger.Info("showing update dialog", "server", msg.ServerVersion)
		}
		m.state = constants.StateUpdateRequired
		m.serverVersion = msg.ServerVersion
		m.form = nil
		return m, nil
	}

	// nothing but reload is reachable once an update is required
	if m.state == constants.StateUpdateRequired {
		return m.updateUpdateRequired(msg)
	}

	if handled, cmd := m.handleResult(msg); handled {
		return m, cmd
	}

	switch m.state {
	case constants.StateLogin:
		return m.updateLogin(msg)
	case constants.StateAddHabit:
		return m.updateAddHabit(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	default:
		return m.updateHabits(msg)
	}
}

func (m *Model) resize() {
	m.statsModel.SetWidth(m.width - 4)
	listHeight := m.height - 14
	if listHeight < 4 {
		listHeight = 4
	}
	m.habitList.SetSize(m.width-4, listHeight)
}

func (m Model) updateUpdateRequired(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Reload):
		m.reload = true
		m.quitting = true
		return m, tea.Quit
	case keyMsg.String() == "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleResult applies the outcome of a background command, whatever view
// is showing
func (m *Model) handleResult(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habitsLoadedMsg:
		if msg.epoch != m.epoch {
			return true, nil
		}
		m.loadingList = false
		if msg.err != nil {
			if !errors.Is(msg.err, cache.ErrDisabled) {
				m.setStatus("Failed to load habits: "+apperrors.Message(msg.err), true)
			}
			return true, nil
		}
		m.habitList.SetHabits(msg.habits)
		return true, nil

	case statsLoadedMsg:
		if msg.epoch != m.epoch {
			return true, nil
		}
		m.loadingStats = false
		if msg.err != nil {
			if !errors.Is(msg.err, cache.ErrDisabled) {
				m.statsModel.SetError(apperrors.Message(msg.err))
			}
			return true, nil
		}
		m.statsModel.SetStats(msg.stats)
		return true, nil

	case habitToggledMsg:
		if msg.epoch != m.epoch {
			return true, nil
		}
		m.habitList.SetPending(msg.id, false)
		if msg.err != nil {
			m.setStatus("Failed to update habit: "+apperrors.Message(msg.err), true)
			return true, nil
		}
		if msg.habit.IsCompletedToday {
			m.setStatus(fmt.Sprintf("✓ %s done for today", msg.habit.Name), false)
		} else {
			m.setStatus(fmt.Sprintf("%s marked not done", msg.habit.Name), false)
		}
		return true, m.reloadAll()

	case habitDeletedMsg:
		if msg.epoch != m.epoch {
			return true, nil
		}
		m.submitting = false
		if msg.err != nil {
			m.setStatus("Failed to delete habit: "+apperrors.Message(msg.err), true)
			return true, nil
		}
		m.setStatus(fmt.Sprintf("Deleted %s", msg.name), false)
		return true, m.reloadAll()

	case habitCreatedMsg:
		if msg.epoch != m.epoch {
			return true, nil
		}
		m.submitting = false
		if msg.err != nil {
			// keep the user's input and let them fix it
			m.formError = apperrors.Message(msg.err)
			m.form = newHabitForm(m.habitForm)
			return true, m.form.Init()
		}
		m.formError = ""
		m.habitForm = nil
		m.form = nil
		m.state = constants.StateHabits
		m.setStatus(fmt.Sprintf("Added %s", msg.habit.Name), false)
		m.loadingList = true
		return true, m.loadHabits()

	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.formError = m.session.Err()
			if m.formError == "" {
				m.formError = apperrors.Message(msg.err)
			}
			username := m.loginForm.Username
			m.enterLogin()
			m.loginForm.Username = username
			return true, m.form.Init()
		}
		m.session.ClearError()
		m.formError = ""
		m.form = nil
		m.loginForm = nil
		m.epoch++
		m.state = constants.StateHabits
		m.setStatus("", false)
		return true, m.reloadAll()

	case logoutDoneMsg:
		m.submitting = false
		if msg.err != nil {
			logger.Warn("logout left local state behind", "err", msg.err)
		}
		m.epoch++
		m.habitList.SetHabits(nil)
		m.statsModel.Reset()
		m.loadingList = false
		m.loadingStats = false
		m.formError = ""
		m.setStatus("", false)
		m.enterLogin()
		return true, m.form.Init()
	}
	return false, nil
}

func (m *Model) reloadAll() tea.Cmd {
	m.loadingList = true
	m.loadingStats = true
	return tea.Batch(m.loadHabits(), m.loadStats())
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.submitting || m.form == nil {
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.submitting = true
		m.formError = ""
		m.session.ClearError()
		cmds = append(cmds, m.login(m.loginForm.Username, m.loginForm.Password))
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && !m.submitting {
		m.state = constants.StateHabits
		m.form = nil
		m.formError = ""
		return m, nil
	}
	if m.submitting || m.form == nil {
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.submitting = true
		cmds = append(cmds, m.createHabit(m.habitForm.Name, m.habitForm.Description))
	case huh.StateAborted:
		m.state = constants.StateHabits
		m.form = nil
		m.formError = ""
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		target := m.toDelete
		m.toDelete = nil
		m.state = constants.StateHabits
		if target == nil {
			return m, nil
		}
		m.submitting = true
		return m, m.deleteHabit(target.ID, target.Name)
	case key.Matches(keyMsg, m.keys.Cancel):
		m.toDelete = nil
		m.state = constants.StateHabits
	}
	return m, nil
}

func (m Model) updateHabits(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{}
		m.form = newHabitForm(m.habitForm)
		m.formError = ""
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habitlist.ToggleHabitMsg:
		m.habitList.SetPending(msg.ID, true)
		return m, m.toggleHabit(msg.ID, msg.Completed)

	case habitlist.DeleteHabitMsg:
		m.toDelete = &pendingDelete{ID: msg.ID, Name: msg.Name}
		m.state = constants.StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.habitList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.habits.Refresh()
			m.setStatus("", false)
			return m, m.reloadAll()
		case key.Matches(msg, m.keys.Logout):
			m.submitting = true
			return m, m.logout()
		}
	}

	var cmd tea.Cmd
	m.habitList, cmd = m.habitList.Update(msg)
	return m, cmd
}
