package storage

import (
	"errors"
	"path/filepath"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

func providers(t *testing.T) map[string]Provider {
	t.Helper()
	gokeyring.MockInit()
	dir := t.TempDir()
	return map[string]Provider{
		"sqlite":  NewSQLiteStore(filepath.Join(dir, "test.db")),
		"json":    NewJSONStore(filepath.Join(dir, "session.json")),
		"keyring": NewKeyringStore(),
	}
}

func TestProviders(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			if err := p.Open(); err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			defer p.Close()

			if _, err := p.Get("missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}

			if err := p.Set("k", "v1"); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			if err := p.Set("k", "v2"); err != nil {
				t.Fatalf("Set() overwrite failed: %v", err)
			}
			got, err := p.Get("k")
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if got != "v2" {
				t.Errorf("Get() = %q, want v2", got)
			}

			if err := p.Delete("k"); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}
			if err := p.Delete("k"); err != nil {
				t.Errorf("Delete() of missing key should be nil, got %v", err)
			}
			if _, err := p.Get("k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestFileProvidersPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]func() Provider{
		"sqlite": func() Provider { return NewSQLiteStore(filepath.Join(dir, "test.db")) },
		"json":   func() Provider { return NewJSONStore(filepath.Join(dir, "session.json")) },
	}

	for name, mk := range tests {
		t.Run(name, func(t *testing.T) {
			first := mk()
			if err := first.Open(); err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			if err := first.Set(constants.TokenKey, "persisted"); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			if err := first.Close(); err != nil {
				t.Fatalf("Close() failed: %v", err)
			}

			second := mk()
			if err := second.Open(); err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			defer second.Close()
			got, err := second.Get(constants.TokenKey)
			if err != nil {
				t.Fatalf("Get() after reopen failed: %v", err)
			}
			if got != "persisted" {
				t.Errorf("Get() = %q, want persisted", got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend constants.StorageBackend
		want    string
		wantErr bool
	}{
		{constants.StorageSQLite, "*storage.SQLiteStore", false},
		{constants.StorageJSON, "*storage.JSONStore", false},
		{constants.StorageKeyring, "*storage.KeyringStore", false},
		{"redis", "", true},
	}

	for _, tt := range tests {
		p, err := New(tt.backend, filepath.Join(t.TempDir(), "x"))
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		var got string
		switch p.(type) {
		case *SQLiteStore:
			got = "*storage.SQLiteStore"
		case *JSONStore:
			got = "*storage.JSONStore"
		case *KeyringStore:
			got = "*storage.KeyringStore"
		}
		if got != tt.want {
			t.Errorf("New(%q) = %s, want %s", tt.backend, got, tt.want)
		}
	}
}

func newTokenStore(t *testing.T) *TokenStore {
	t.Helper()
	p := NewJSONStore(filepath.Join(t.TempDir(), "session.json"))
	if err := p.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return NewTokenStore(p)
}

func TestTokenStoreRoundTrip(t *testing.T) {
	ts := newTokenStore(t)

	tok, err := ts.Token()
	if err != nil || tok != "" {
		t.Fatalf("Token() on empty store = %q, %v; want empty, nil", tok, err)
	}
	if _, ok, err := ts.User(); ok || err != nil {
		t.Fatalf("User() on empty store = ok %v, err %v", ok, err)
	}

	user := models.User{ID: 4, Username: "ana", AccessToken: "tok-4"}
	if err := ts.Save(user); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	tok, err = ts.Token()
	if err != nil || tok != "tok-4" {
		t.Errorf("Token() = %q, %v; want tok-4", tok, err)
	}
	got, ok, err := ts.User()
	if err != nil || !ok {
		t.Fatalf("User() = ok %v, err %v", ok, err)
	}
	if got != user {
		t.Errorf("User() = %+v, want %+v", got, user)
	}

	if err := ts.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if tok, _ := ts.Token(); tok != "" {
		t.Errorf("Token() after Clear = %q", tok)
	}
	if _, ok, _ := ts.User(); ok {
		t.Error("User() after Clear should report not found")
	}
}

func TestTokenStoreCorruptProfile(t *testing.T) {
	ts := newTokenStore(t)
	if err := ts.Provider().Set(constants.UserKey, "{not json"); err != nil {
		t.Fatal(err)
	}

	_, _, err := ts.User()
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("User() error = %v, want ErrCorrupt", err)
	}
}
