package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/julianstephens/habitual/internal/constants"
)

// Config holds client configuration supplied by the environment
type Config struct {
	BaseURL              string                   `env:"HABITUAL_API_BASE_URL" envDefault:"http://localhost:3001/api"`
	Timeout              time.Duration            `env:"HABITUAL_API_TIMEOUT" envDefault:"10s"`
	ConfigDir            string                   `env:"HABITUAL_CONFIG_DIR" envDefault:"~/.config/habitual"`
	Storage              constants.StorageBackend `env:"HABITUAL_STORAGE" envDefault:"sqlite"`
	Debug                bool                     `env:"HABITUAL_DEBUG" envDefault:"false"`
	LogLevel             string                   `env:"HABITUAL_LOG_LEVEL"`
	VersionCheckInterval time.Duration            `env:"HABITUAL_VERSION_CHECK_INTERVAL" envDefault:"20s"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the config and reports values the client cannot use
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API base URL must use http or https, got %q", u.Scheme)
	}

	if c.Timeout <= 0 {
		c.Timeout = constants.DefaultTimeout
	}
	if c.VersionCheckInterval <= 0 {
		c.VersionCheckInterval = constants.VersionCheckInterval
	}

	switch c.Storage {
	case constants.StorageSQLite, constants.StorageJSON, constants.StorageKeyring:
	case "":
		c.Storage = constants.StorageSQLite
	default:
		return fmt.Errorf("unknown storage backend %q (expected sqlite, json or keyring)", c.Storage)
	}

	dir, err := ExpandPath(c.ConfigDir)
	if err != nil {
		return err
	}
	c.ConfigDir = dir
	return nil
}

// StoragePath returns the file backing the configured storage backend.
// The keyring backend has no file and returns an empty string.
func (c *Config) StoragePath() string {
	switch c.Storage {
	case constants.StorageJSON:
		return filepath.Join(c.ConfigDir, constants.StorageFileJSON)
	case constants.StorageKeyring:
		return ""
	default:
		return filepath.Join(c.ConfigDir, constants.StorageFileSQLite)
	}
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" {
		path = constants.DefaultConfigDir
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
