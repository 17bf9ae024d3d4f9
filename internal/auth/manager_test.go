package auth

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/fakeapi"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

func newTestStore(t *testing.T) *storage.TokenStore {
	t.Helper()
	p := storage.NewJSONStore(filepath.Join(t.TempDir(), "session.json"))
	if err := p.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return storage.NewTokenStore(p)
}

func newTestManager(t *testing.T) (*Manager, *storage.TokenStore, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.AddUser("ada", "hunter2")
	store := newTestStore(t)
	client := api.New(srv.URL(), 2*time.Second)
	m := NewManager(store, client)
	client.SetTokenSource(m)
	return m, store, srv
}

func TestRestoreEmpty(t *testing.T) {
	m, _, _ := newTestManager(t)
	if got := m.Restore(); got != StateAnonymous {
		t.Errorf("Restore() = %v, want anonymous", got)
	}
	if m.Token() != "" {
		t.Errorf("Token() = %q, want empty", m.Token())
	}
}

func TestRestoreValid(t *testing.T) {
	m, store, _ := newTestManager(t)
	user := models.User{ID: 7, Username: "ada", AccessToken: "tok"}
	if err := store.Save(user); err != nil {
		t.Fatal(err)
	}

	if got := m.Restore(); got != StateAuthenticated {
		t.Fatalf("Restore() = %v, want authenticated", got)
	}
	if m.Token() != "tok" {
		t.Errorf("Token() = %q", m.Token())
	}
	if u, ok := m.User(); !ok || u.ID != 7 {
		t.Errorf("User() = %+v, %v", u, ok)
	}
}

func TestRestoreDiscardsBadState(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
	}{
		{"corrupt profile", "tok", "{not json"},
		{"token only", "tok", ""},
		{"profile only", "", `{"id":1,"username":"ada","access_token":"tok"}`},
		{"profile without username", "tok", `{"id":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store, _ := newTestManager(t)
			p := store.Provider()
			if tt.token != "" {
				if err := p.Set(constants.TokenKey, tt.token); err != nil {
					t.Fatal(err)
				}
			}
			if tt.user != "" {
				if err := p.Set(constants.UserKey, tt.user); err != nil {
					t.Fatal(err)
				}
			}

			if got := m.Restore(); got != StateAnonymous {
				t.Fatalf("Restore() = %v, want anonymous", got)
			}
			if _, err := p.Get(constants.TokenKey); err != storage.ErrNotFound {
				t.Errorf("token entry survived: %v", err)
			}
			if _, err := p.Get(constants.UserKey); err != storage.ErrNotFound {
				t.Errorf("user entry survived: %v", err)
			}
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	m, store, _ := newTestManager(t)
	m.Restore()

	if err := m.Login(context.Background(), "  ada ", "hunter2"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if m.State() != StateAuthenticated {
		t.Errorf("State() = %v", m.State())
	}
	if m.Err() != "" {
		t.Errorf("Err() = %q", m.Err())
	}

	tok, err := store.Token()
	if err != nil || tok == "" || tok != m.Token() {
		t.Errorf("stored token = %q, %v; session token %q", tok, err, m.Token())
	}
	user, ok, err := store.User()
	if err != nil || !ok || user.Username != "ada" {
		t.Errorf("stored user = %+v, %v, %v", user, ok, err)
	}
}

func TestLoginFailure(t *testing.T) {
	m, store, _ := newTestManager(t)
	m.Restore()

	if err := m.Login(context.Background(), "ada", "wrong"); err == nil {
		t.Fatal("Login() succeeded with bad password")
	}
	if m.State() != StateAnonymous {
		t.Errorf("State() = %v, want anonymous", m.State())
	}
	if m.Err() != "Invalid credentials" {
		t.Errorf("Err() = %q", m.Err())
	}
	if tok, _ := store.Token(); tok != "" {
		t.Errorf("token persisted after failed login: %q", tok)
	}

	m.ClearError()
	if m.Err() != "" {
		t.Errorf("Err() after ClearError = %q", m.Err())
	}
}

func TestLoginValidatesBeforeRequest(t *testing.T) {
	m, _, srv := newTestManager(t)
	m.Restore()

	if err := m.Login(context.Background(), "   ", ""); err == nil {
		t.Fatal("Login() accepted blank credentials")
	}
	if n := srv.Calls(fakeapi.RouteLogin); n != 0 {
		t.Errorf("login requests = %d, want 0", n)
	}
	if m.Err() == "" {
		t.Error("Err() empty after validation failure")
	}
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	m, store, srv := newTestManager(t)
	m.Restore()
	if err := m.Login(context.Background(), "ada", "hunter2"); err != nil {
		t.Fatal(err)
	}
	token := m.Token()
	srv.Fail(fakeapi.RouteLogout, http.StatusInternalServerError, `{"message":"down"}`, -1)

	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if m.State() != StateAnonymous || m.Token() != "" {
		t.Errorf("after logout state=%v token=%q", m.State(), m.Token())
	}
	if tok, _ := store.Token(); tok != "" {
		t.Errorf("stored token = %q after logout", tok)
	}
	if _, ok, _ := store.User(); ok {
		t.Error("stored user survived logout")
	}
	if got := srv.LastHeader(fakeapi.RouteLogout, "Authorization"); got != "Bearer "+token {
		t.Errorf("logout Authorization = %q", got)
	}
}

func TestOnChange(t *testing.T) {
	m, _, _ := newTestManager(t)

	var mu sync.Mutex
	var seen []State
	m.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	m.Restore()
	if err := m.Login(context.Background(), "ada", "hunter2"); err != nil {
		t.Fatal(err)
	}

	want := []State{StateRestoring, StateAnonymous, StateLoading, StateAuthenticated}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, seen[i], want[i])
		}
	}
}
