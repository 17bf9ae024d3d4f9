package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/session"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
)

var CLI struct {
	ShowVersion kong.VersionFlag `name:"version" help:"Print the client version and exit."`
	APIURL      string           `name:"api-url" help:"API base URL (overrides HABITUAL_API_BASE_URL)."`
	Timeout     time.Duration    `help:"Request timeout (overrides HABITUAL_API_TIMEOUT)."`
	ConfigDir   string           `name:"config-dir" help:"Directory for logs and session storage (overrides HABITUAL_CONFIG_DIR)."`
	Storage     string           `help:"Session storage backend: sqlite, json or keyring (overrides HABITUAL_STORAGE)."`
	Debug       bool             `help:"Enable debug logging to stderr."`

	Login   session.LoginCmd  `cmd:"" help:"Log in to the habits API."`
	Logout  session.LogoutCmd `cmd:"" help:"Log out and clear the stored session."`
	Whoami  session.WhoamiCmd `cmd:"" help:"Show the logged-in user."`
	Habit   habits.HabitCmd   `cmd:"" help:"Manage habits."`
	Stats   habits.StatsCmd   `cmd:"" help:"Show today's completion statistics."`
	Version system.VersionCmd `cmd:"" help:"Show client version and check it against the server."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track daily habits against the habits API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v" + constants.Version},
	)

	cfg, err := loadConfig()
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.ConfigDir,
		Level:     cfg.LogLevel,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	store, err := storage.New(cfg.Storage, cfg.StoragePath())
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := store.Open(); err != nil {
		apperrors.Fatalf("failed to open %s session storage: %v", cfg.Storage, err)
	}

	appCtx := cli.NewContext(cfg, store)
	state := appCtx.Session.Restore()
	logger.Debug("starting", "command", kctx.Command(), "session", state, "api", cfg.BaseURL)

	err = kctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("failed to close session storage", "err", cerr)
	}
	apperrors.Fatal(err)
}

// loadConfig reads the environment, then lets command-line flags override it
func loadConfig() (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if CLI.APIURL != "" {
		cfg.BaseURL = CLI.APIURL
	}
	if CLI.Timeout > 0 {
		cfg.Timeout = CLI.Timeout
	}
	if CLI.ConfigDir != "" {
		cfg.ConfigDir = CLI.ConfigDir
	}
	if CLI.Storage != "" {
		cfg.Storage = constants.StorageBackend(CLI.Storage)
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
