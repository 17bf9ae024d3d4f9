package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/validation"
)

type LoginFormModel struct {
	Username string
	Password string
}

type HabitFormModel struct {
	Name        string
	Description string
}

func newLoginForm(f *LoginFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&f.Username).
				Validate(validation.Required(validation.ErrUsernameRequired)),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password).
				Validate(validation.Required(validation.ErrPasswordRequired)),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}

// newHabitForm applies the same rules the client enforces before sending,
// so the form never submits something the API call would reject locally
func newHabitForm(f *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("e.g. Read 20 pages").
				Value(&f.Name).
				Validate(validation.HabitName),
			huh.NewText().
				Title("Description").
				Placeholder("optional").
				Lines(3).
				Value(&f.Description).
				Validate(validation.HabitDescription),
		),
	).WithTheme(huh.ThemeDracula())
}
