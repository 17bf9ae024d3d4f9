package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// ErrCorrupt is returned when a persisted profile cannot be decoded
var ErrCorrupt = errors.New("stored session is corrupt")

// New returns the Provider for backend. path is ignored by the keyring backend.
func New(backend constants.StorageBackend, path string) (Provider, error) {
	switch backend {
	case constants.StorageSQLite, "":
		return NewSQLiteStore(path), nil
	case constants.StorageJSON:
		return NewJSONStore(path), nil
	case constants.StorageKeyring:
		return NewKeyringStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// TokenStore persists the bearer token and user profile under fixed keys
type TokenStore struct {
	p Provider
}

func NewTokenStore(p Provider) *TokenStore {
	return &TokenStore{p: p}
}

// Token returns the stored bearer token, or "" when none is stored
func (ts *TokenStore) Token() (string, error) {
	tok, err := ts.p.Get(constants.TokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return tok, err
}

func (ts *TokenStore) SetToken(token string) error {
	return ts.p.Set(constants.TokenKey, token)
}

// User returns the stored profile. ok is false when nothing is stored;
// an undecodable profile returns ErrCorrupt.
func (ts *TokenStore) User() (user models.User, ok bool, err error) {
	raw, err := ts.p.Get(constants.UserKey)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return models.User{}, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return user, true, nil
}

func (ts *TokenStore) SetUser(user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}
	return ts.p.Set(constants.UserKey, string(raw))
}

// Save persists token and profile together
func (ts *TokenStore) Save(user models.User) error {
	if err := ts.SetToken(user.AccessToken); err != nil {
		return err
	}
	return ts.SetUser(user)
}

// Clear removes both entries, attempting each even if the first fails
func (ts *TokenStore) Clear() error {
	return errors.Join(
		ts.p.Delete(constants.TokenKey),
		ts.p.Delete(constants.UserKey),
	)
}

func (ts *TokenStore) Provider() Provider {
	return ts.p
}
