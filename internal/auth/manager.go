// Package auth owns the login session: restoring it from durable storage,
// logging in and out, and telling interested views when it changes.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/validation"
)

type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
	StateLoading
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	case StateLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Client is the part of the API client the session needs
type Client interface {
	Login(ctx context.Context, username, password string) (models.User, error)
	Logout(ctx context.Context, token string) error
}

type Manager struct {
	mu     sync.RWMutex
	store  *storage.TokenStore
	client Client
	state  State
	user   models.User
	err    string
	subs   []func(State)
}

func NewManager(store *storage.TokenStore, client Client) *Manager {
	return &Manager{store: store, client: client}
}

// Restore loads the persisted session. Missing, partial or undecodable state
// is removed from storage and leaves the session anonymous.
func (m *Manager) Restore() State {
	m.setState(StateRestoring)

	user, err := m.load()
	if err != nil {
		logger.Warn("discarding stored session", "err", err)
		if cerr := m.store.Clear(); cerr != nil {
			logger.Error("failed to clear stored session", "err", cerr)
		}
		m.transition(StateAnonymous, models.User{}, "")
		return StateAnonymous
	}
	if !user.Valid() {
		m.transition(StateAnonymous, models.User{}, "")
		return StateAnonymous
	}

	logger.Debug("session restored", "user", user.Username)
	m.transition(StateAuthenticated, user, "")
	return StateAuthenticated
}

var errPartialSession = errors.New("stored session is incomplete")

func (m *Manager) load() (models.User, error) {
	token, err := m.store.Token()
	if err != nil {
		return models.User{}, err
	}
	user, ok, err := m.store.User()
	if err != nil {
		return models.User{}, err
	}
	switch {
	case token == "" && !ok:
		return models.User{}, nil
	case token == "" || !ok:
		return models.User{}, errPartialSession
	}
	// the token entry is authoritative for requests
	user.AccessToken = token
	if !user.Valid() {
		return models.User{}, errPartialSession
	}
	return user, nil
}

// Login authenticates against the API and persists the session. On failure
// the session stays anonymous and Err reports the reason.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := validation.Credentials(username, password); err != nil {
		m.fail(err)
		return err
	}

	m.mu.Lock()
	m.err = ""
	m.mu.Unlock()
	m.setState(StateLoading)

	user, err := m.client.Login(ctx, username, password)
	if err != nil {
		logger.Warn("login failed", "user", username, "err", err)
		m.fail(err)
		return err
	}
	if err := m.store.Save(user); err != nil {
		logger.Error("failed to persist session", "err", err)
		m.fail(err)
		return err
	}

	logger.Info("logged in", "user", user.Username)
	m.transition(StateAuthenticated, user, "")
	return nil
}

// Logout tells the server the token is no longer in use, then clears local
// state whatever the server said. Only a local storage failure is returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.RLock()
	token := m.user.AccessToken
	username := m.user.Username
	m.mu.RUnlock()

	m.setState(StateLoading)

	if err := m.client.Logout(ctx, token); err != nil {
		logger.Warn("remote logout failed", "user", username, "err", err)
	}

	err := m.store.Clear()
	if err != nil {
		logger.Error("failed to clear stored session", "err", err)
	}
	logger.Info("logged out", "user", username)
	m.transition(StateAnonymous, models.User{}, "")
	return err
}

// Token implements the API client's token source
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated && m.state != StateLoading {
		return ""
	}
	return m.user.AccessToken
}

func (m *Manager) User() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.state == StateAuthenticated
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Err is the message from the last failed login, or ""
func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *Manager) ClearError() {
	m.mu.Lock()
	m.err = ""
	m.mu.Unlock()
}

// OnChange registers fn to run after every state transition. Callbacks run
// synchronously on the goroutine that caused the change.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) fail(err error) {
	msg := apperrors.Message(err)
	if msg == "" {
		msg = "Login failed"
	}
	m.transition(StateAnonymous, models.User{}, msg)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	subs := append([]func(State){}, m.subs...)
	m.mu.Unlock()
	notify(subs, s)
}

func (m *Manager) transition(s State, user models.User, errMsg string) {
	m.mu.Lock()
	m.state = s
	m.user = user
	m.err = errMsg
	subs := append([]func(State){}, m.subs...)
	m.mu.Unlock()
	notify(subs, s)
}

func notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s)
	}
}
