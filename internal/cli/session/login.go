package session

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/validation"
)

type LoginCmd struct {
	Username string `short:"u" help:"Username. Prompted for when omitted."`
	Password string `short:"p" help:"Password. Prompted for when omitted." env:"HABITUAL_PASSWORD"`
}

// promptCredentials asks for whichever credentials are still empty
var promptCredentials = func(username, password *string) error {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(username).
			Validate(validation.Required(validation.ErrUsernameRequired)))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(validation.Required(validation.ErrPasswordRequired)))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeDracula()).Run()
}

func (cmd *LoginCmd) Run(ctx *cli.Context) error {
	if user, ok := ctx.Session.User(); ok {
		ctx.Printf("Already logged in as %s. Run 'habitual logout' to switch users.\n", user.Username)
		return nil
	}

	username, password := cmd.Username, cmd.Password
	if username == "" || password == "" {
		if err := promptCredentials(&username, &password); err != nil {
			return fmt.Errorf("login cancelled: %w", err)
		}
	}

	if err := ctx.Session.Login(context.Background(), username, password); err != nil {
		return err
	}

	user, _ := ctx.Session.User()
	ctx.Printf("✓ Logged in as %s\n", user.Username)
	return nil
}

type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(ctx *cli.Context) error {
	user, ok := ctx.Session.User()
	if !ok {
		ctx.Println("Not logged in.")
		return nil
	}
	if err := ctx.Session.Logout(context.Background()); err != nil {
		return fmt.Errorf("failed to clear local session: %w", err)
	}
	ctx.Printf("✓ Logged out %s\n", user.Username)
	return nil
}

type WhoamiCmd struct{}

func (cmd *WhoamiCmd) Run(ctx *cli.Context) error {
	user, ok := ctx.Session.User()
	if !ok {
		return cli.ErrNotLoggedIn
	}
	ctx.Printf("%s (id %d)\n", user.Username, user.ID)
	ctx.Printf("API: %s\n", ctx.Config.BaseURL)
	return nil
}
