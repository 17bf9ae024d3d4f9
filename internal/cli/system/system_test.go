package system

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/fakeapi"
	"github.com/julianstephens/habitual/internal/storage"
)

func setupTestContext(t *testing.T, storageType constants.StorageBackend) (*cli.Context, *fakeapi.Server, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.AddUser("ada", "hunter2")

	dir := t.TempDir()
	cfg := &config.Config{BaseURL: srv.URL(), Timeout: 2 * time.Second, ConfigDir: dir, Storage: storageType}
	store, err := storage.New(cfg.Storage, cfg.StoragePath())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if err := store.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := cli.NewContext(cfg, store)
	out := &bytes.Buffer{}
	ctx.Out = out
	t.Cleanup(func() { _ = ctx.Close() })
	ctx.Session.Restore()
	return ctx, srv, out
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name       string
		minVersion string
		offline    bool
		wantErr    error
		wantOut    string
		wantCalls  int
	}{
		{name: "up to date", minVersion: "1.0.0", wantOut: "Client is up to date", wantCalls: 1},
		{name: "same version", minVersion: constants.Version, wantOut: "Client is up to date", wantCalls: 1},
		{name: "outdated", minVersion: "9.0.0", wantErr: errUpdateRequired, wantOut: "out of date", wantCalls: 1},
		{name: "offline", minVersion: "9.0.0", offline: true, wantOut: constants.AppName + " " + constants.Version},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, srv, out := setupTestContext(t, constants.StorageJSON)
			srv.SetMinVersion(tt.minVersion)

			err := (&VersionCmd{Offline: tt.offline}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.wantOut)
			}
			if got := srv.Calls(fakeapi.RouteVersion); got != tt.wantCalls {
				t.Errorf("version requests = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestVersionCmdUnreachable(t *testing.T) {
	ctx, srv, out := setupTestContext(t, constants.StorageJSON)
	srv.Close()

	if err := (&VersionCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if !strings.Contains(out.String(), "Could not reach") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDoctorCmd(t *testing.T) {
	for _, st := range []constants.StorageBackend{constants.StorageJSON, constants.StorageSQLite, constants.StorageKeyring} {
		t.Run(string(st), func(t *testing.T) {
			ctx, _, out := setupTestContext(t, st)
			if err := ctx.Session.Login(context.Background(), "ada", "hunter2"); err != nil {
				t.Fatalf("Login() error = %v", err)
			}

			if err := (&DoctorCmd{}).Run(ctx); err != nil {
				t.Fatalf("Run() error = %v\n%s", err, out.String())
			}
			got := out.String()
			for _, want := range []string{
				"✓ Configuration: OK",
				"✓ Storage reachable: OK",
				"logged in as ada",
				"✓ API reachable: OK",
				"✓ Client version: OK",
				"All diagnostics passed!",
			} {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestDoctorCmdAnonymousWarnsOnly(t *testing.T) {
	ctx, _, out := setupTestContext(t, constants.StorageJSON)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Session: WARNING") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDoctorCmdFailures(t *testing.T) {
	t.Run("api unreachable", func(t *testing.T) {
		ctx, srv, out := setupTestContext(t, constants.StorageJSON)
		srv.Close()

		if err := (&DoctorCmd{}).Run(ctx); !errors.Is(err, errChecksFailed) {
			t.Fatalf("Run() error = %v, want errChecksFailed", err)
		}
		got := out.String()
		if !strings.Contains(got, "❌ API reachable: FAIL") {
			t.Errorf("output missing API failure:\n%s", got)
		}
		if !strings.Contains(got, "Client version: SKIPPED") {
			t.Errorf("output missing skipped version check:\n%s", got)
		}
	})

	t.Run("outdated client", func(t *testing.T) {
		ctx, srv, out := setupTestContext(t, constants.StorageJSON)
		srv.SetMinVersion("99.0")

		if err := (&DoctorCmd{}).Run(ctx); !errors.Is(err, errChecksFailed) {
			t.Fatalf("Run() error = %v, want errChecksFailed", err)
		}
		if !strings.Contains(out.String(), "❌ Client version: FAIL") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("bad timeout", func(t *testing.T) {
		ctx, _, out := setupTestContext(t, constants.StorageJSON)
		ctx.Config.Timeout = 0

		if err := (&DoctorCmd{}).Run(ctx); !errors.Is(err, errChecksFailed) {
			t.Fatalf("Run() error = %v, want errChecksFailed", err)
		}
		if !strings.Contains(out.String(), "❌ Configuration: FAIL") {
			t.Errorf("output = %q", out.String())
		}
	})
}

func TestCheckKeyringMocked(t *testing.T) {
	gokeyring.MockInit()
	ctx := &cli.Context{Config: &config.Config{Storage: constants.StorageKeyring}}
	if err := checkKeyring(ctx); err != nil {
		t.Errorf("checkKeyring() = %v, want nil with mock keyring", err)
	}
}

func TestCheckKeyringUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(gokeyring.MockInit)

	ctx := &cli.Context{Config: &config.Config{Storage: constants.StorageKeyring}}
	err := checkKeyring(ctx)
	if err == nil || !strings.Contains(err.Error(), "keyring storage is selected") {
		t.Errorf("checkKeyring() = %v", err)
	}
}

func TestDoctorReportsPaths(t *testing.T) {
	ctx, _, out := setupTestContext(t, constants.StorageSQLite)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := filepath.Join(ctx.Config.ConfigDir, "logs", constants.AppName+".log")
	if !strings.Contains(out.String(), want) {
		t.Errorf("output missing log path %q:\n%s", want, out.String())
	}
}
