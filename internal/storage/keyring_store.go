package storage

import (
	"errors"

	"github.com/julianstephens/habitual/internal/keyring"
)

// KeyringStore keeps entries in the OS keyring under the application service name
type KeyringStore struct{}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Open() error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func (s *KeyringStore) Close() error {
	return nil
}

func (s *KeyringStore) Get(key string) (string, error) {
	v, err := keyring.Get(key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *KeyringStore) Set(key, value string) error {
	return keyring.Set(key, value)
}

func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) Path() string {
	return "os-keyring"
}
