package storage

import "errors"

// ErrNotFound is returned by Provider.Get when the key has no value
var ErrNotFound = errors.New("key not found")

// Provider is a durable string key-value store. The session only ever
// writes two keys (token and profile), so backends favour simplicity over
// throughput.
type Provider interface {
	// Lifecycle
	Open() error
	Close() error

	Get(key string) (string, error)
	Set(key, value string) error
	// Delete removes key. Missing keys are not an error.
	Delete(key string) error

	// Path describes where the data lives, for diagnostics
	Path() string
}
