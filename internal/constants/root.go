package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

// StorageBackend names a durable storage implementation for the session
type StorageBackend string

const (
	AppName           = "habitual"
	DefaultConfigDir  = "~/.config/habitual"
	DefaultBaseURL    = "http://localhost:3001/api"
	DefaultTimeout    = 10 * time.Second
	StorageFileSQLite = "habitual.db"
	StorageFileJSON   = "session.json"

	// Version is the client build version compared against the server's
	// advertised minimum. Keep in sync with release tags.
	Version = "1.2.0"

	// Durable storage keys
	TokenKey = "access_token"
	UserKey  = "user"

	// Cache
	StaleTime    = 5 * time.Minute
	FetchRetries = 1
	RetryDelay   = time.Second

	// Version polling
	VersionCheckInterval = 20 * time.Second
	VersionEndpoint      = "/version/web"

	// Habit field limits
	HabitNameMinLen        = 3
	HabitNameMaxLen        = 100
	HabitDescriptionMaxLen = 500

	// Storage backends
	StorageSQLite  StorageBackend = "sqlite"
	StorageJSON    StorageBackend = "json"
	StorageKeyring StorageBackend = "keyring"
)

// Session States
const (
	StateHabits SessionState = iota
	StateLogin
	StateAddHabit
	StateConfirmDelete
	StateUpdateRequired
)
