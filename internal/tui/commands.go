package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/models"
)

type habitsLoadedMsg struct {
	epoch  int
	habits []models.Habit
	err    error
}

type statsLoadedMsg struct {
	epoch int
	stats models.HabitStats
	err   error
}

type loginDoneMsg struct {
	err error
}

type logoutDoneMsg struct {
	err error
}

type habitCreatedMsg struct {
	epoch int
	habit models.Habit
	err   error
}

type habitToggledMsg struct {
	epoch int
	id    int
	habit models.Habit
	err   error
}

type habitDeletedMsg struct {
	epoch int
	id    int
	name  string
	err   error
}

func (m Model) loadHabits() tea.Cmd {
	svc, epoch := m.habits, m.epoch
	return func() tea.Msg {
		habits, err := svc.Habits(context.Background())
		return habitsLoadedMsg{epoch: epoch, habits: habits, err: err}
	}
}

func (m Model) loadStats() tea.Cmd {
	svc, epoch := m.habits, m.epoch
	return func() tea.Msg {
		stats, err := svc.Stats(context.Background())
		return statsLoadedMsg{epoch: epoch, stats: stats, err: err}
	}
}

func (m Model) login(username, password string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return loginDoneMsg{err: session.Login(context.Background(), username, password)}
	}
}

func (m Model) logout() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return logoutDoneMsg{err: session.Logout(context.Background())}
	}
}

func (m Model) createHabit(name, description string) tea.Cmd {
	svc, epoch := m.habits, m.epoch
	return func() tea.Msg {
		habit, err := svc.Create(context.Background(), name, description)
		return habitCreatedMsg{epoch: epoch, habit: habit, err: err}
	}
}

func (m Model) toggleHabit(id int, completed bool) tea.Cmd {
	svc, epoch := m.habits, m.epoch
	return func() tea.Msg {
		habit, err := svc.Toggle(context.Background(), id, completed)
		return habitToggledMsg{epoch: epoch, id: id, habit: habit, err: err}
	}
}

func (m Model) deleteHabit(id int, name string) tea.Cmd {
	svc, epoch := m.habits, m.epoch
	return func() tea.Msg {
		err := svc.Delete(context.Background(), id)
		return habitDeletedMsg{epoch: epoch, id: id, name: name, err: err}
	}
}
