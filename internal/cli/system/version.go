package system

import (
	"context"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/version"
)

type VersionCmd struct {
	Offline bool `help:"Skip the server version check."`
}

func (cmd *VersionCmd) Run(ctx *cli.Context) error {
	ctx.Printf("%s %s\n", constants.AppName, constants.Version)
	if cmd.Offline {
		return nil
	}

	info, err := ctx.Client.CheckVersion(context.Background())
	if err != nil {
		ctx.Printf("⚠ Could not reach %s: %s\n", ctx.Config.BaseURL, apperrors.Message(err))
		return nil
	}

	ctx.Printf("Server minimum: %s\n", info.Version)
	if version.NeedsUpdate(constants.Version, info.Version) {
		ctx.Println("❌ This client is out of date. Install the latest release to continue.")
		return errUpdateRequired
	}
	ctx.Println("✓ Client is up to date")
	return nil
}
