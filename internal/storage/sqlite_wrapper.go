package storage

import (
	"database/sql"
	"errors"

	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

// SQLiteStore adapts sqlite.Store to Provider
type SQLiteStore struct {
	store *sqlite.Store
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{store: sqlite.NewStore(path)}
}

func (s *SQLiteStore) Open() error  { return s.store.Open() }
func (s *SQLiteStore) Close() error { return s.store.Close() }
func (s *SQLiteStore) Path() string { return s.store.GetConfigPath() }

func (s *SQLiteStore) Get(key string) (string, error) {
	v, err := s.store.Get(key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *SQLiteStore) Set(key, value string) error { return s.store.Set(key, value) }
func (s *SQLiteStore) Delete(key string) error     { return s.store.Delete(key) }

// GetDB exposes the underlying connection for diagnostics
func (s *SQLiteStore) GetDB() *sql.DB { return s.store.GetDB() }
