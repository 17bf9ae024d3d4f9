package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type jsonFile struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

// JSONStore keeps entries in a single 0600 JSON file, rewritten on every change
type JSONStore struct {
	path string
	mu   sync.Mutex
	data *jsonFile
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = &jsonFile{Version: 1, Entries: map[string]string{}}
			return nil
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	data := &jsonFile{}
	if err := json.Unmarshal(raw, data); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if data.Entries == nil {
		data.Entries = map[string]string{}
	}
	s.data = data
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return "", fmt.Errorf("storage not opened")
	}
	v, ok := s.data.Entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *JSONStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return fmt.Errorf("storage not opened")
	}
	s.data.Entries[key] = value
	return s.save()
}

func (s *JSONStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return fmt.Errorf("storage not opened")
	}
	if _, ok := s.data.Entries[key]; !ok {
		return nil
	}
	delete(s.data.Entries, key)
	return s.save()
}

func (s *JSONStore) Path() string {
	return s.path
}

// save writes through a temp file so a crash never leaves a truncated store
func (s *JSONStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}
