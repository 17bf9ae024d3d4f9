package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateUpdateRequired:
		return m.viewUpdateRequired()
	case constants.StateLogin:
		content = m.viewLogin()
	case constants.StateAddHabit:
		content = m.viewAddHabit()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.viewHabits()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	parts := []string{titleStyle.Render(constants.AppName)}
	if user, ok := m.session.User(); ok {
		parts = append(parts, userStyle.Render("signed in as "+user.Username))
	}
	if m.busy() {
		parts = append(parts, m.spinner.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsErr {
		return dangerStyle.Render(m.status)
	}
	return warningStyle.Render(m.status)
}

func (m Model) viewHabits() string {
	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.statsModel.View(),
		m.habitList.View(),
		m.viewStatus(),
	))
}

func (m Model) viewLogin() string {
	var body string
	if m.submitting {
		body = m.spinner.View() + " Signing in..."
	} else if m.form != nil {
		body = m.form.View()
	}

	rows := []string{"Log in to continue", ""}
	if m.formError != "" {
		rows = append(rows, dangerStyle.Render(m.formError), "")
	}
	rows = append(rows, body)
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) viewAddHabit() string {
	rows := []string{"New habit", ""}
	if m.formError != "" {
		rows = append(rows, dangerStyle.Render(m.formError), "")
	}
	if m.submitting {
		rows = append(rows, m.spinner.View()+" Saving...")
	} else if m.form != nil {
		rows = append(rows, m.form.View())
	}
	rows = append(rows, "", userStyle.Render("esc to cancel"))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if m.toDelete != nil {
		name = m.toDelete.Name
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete habit %q?", name)),
			"Its streak and completion history will be lost.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewUpdateRequired() string {
	current := constants.Version
	if m.updates != nil {
		current = m.updates.Current()
	}
	dialog := modalStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		dangerStyle.Render("Update required"),
		"",
		fmt.Sprintf("This client (v%s) is older than the minimum", current),
		fmt.Sprintf("version the server supports (v%s).", m.serverVersion),
		"",
		"[enter] Reload",
	))
	if m.width == 0 || m.height == 0 {
		return dialog
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}
