package system

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/version"
)

var (
	errChecksFailed   = errors.New("one or more health checks failed")
	errUpdateRequired = errors.New("client update required")
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, err error) {
		if err != nil {
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			return
		}
		ctx.Printf("✓ %s: OK\n", name)
	}
	warn := func(name string, err error) {
		if err != nil {
			ctx.Printf("⚠ %s: WARNING\n", name)
			ctx.Printf("   %v\n", err)
			return
		}
		ctx.Printf("✓ %s: OK\n", name)
	}

	report("Configuration", checkConfig(ctx))
	report("Storage reachable", checkStorage(ctx))
	warn("OS keyring", checkKeyring(ctx))
	warn("Session", checkSession(ctx))

	apiReachable := true
	serverVersion, err := checkAPI(ctx)
	if err != nil {
		apiReachable = false
	}
	report("API reachable", err)

	if apiReachable {
		report("Client version", checkClientVersion(serverVersion))
	} else {
		ctx.Printf("⊘ Client version: SKIPPED (API not reachable)\n")
	}

	ctx.Println()
	ctx.Printf("Config dir: %s\n", ctx.Config.ConfigDir)
	ctx.Printf("Log file:   %s\n", filepath.Join(ctx.Config.ConfigDir, "logs", constants.AppName+".log"))

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errChecksFailed
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	if ctx.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if ctx.Config.Timeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", ctx.Config.Timeout)
	}
	return nil
}

func checkStorage(ctx *cli.Context) error {
	if ctx.Store == nil {
		return fmt.Errorf("storage not initialized")
	}
	if _, err := ctx.Store.Get(constants.TokenKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read %s: %w", ctx.Store.Path(), err)
	}

	if s, ok := ctx.Store.(*storage.SQLiteStore); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var v int
		if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		if v != sqlite.SchemaVersion {
			return fmt.Errorf("schema version %d, expected %d", v, sqlite.SchemaVersion)
		}
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if keyring.IsAvailable() {
		return nil
	}
	if ctx.Config.Storage == constants.StorageKeyring {
		return fmt.Errorf("keyring storage is selected but the OS keyring is unavailable")
	}
	return fmt.Errorf("OS keyring unavailable (only needed for --storage keyring)")
}

func checkSession(ctx *cli.Context) error {
	if user, ok := ctx.Session.User(); ok {
		ctx.Printf("   logged in as %s\n", user.Username)
		return nil
	}
	return cli.ErrNotLoggedIn
}

func checkAPI(ctx *cli.Context) (string, error) {
	info, err := ctx.Client.CheckVersion(context.Background())
	if err != nil {
		return "", fmt.Errorf("%s: %w", ctx.Config.BaseURL, err)
	}
	return info.Version, nil
}

func checkClientVersion(serverVersion string) error {
	if version.NeedsUpdate(constants.Version, serverVersion) {
		return fmt.Errorf("%w: client %s, server requires %s", errUpdateRequired, constants.Version, serverVersion)
	}
	return nil
}
