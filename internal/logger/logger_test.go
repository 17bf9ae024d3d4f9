package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Init")
	}

	Warn("version check failed", "error", "connection refused")
	Error("remote logout failed", "status", 500)
}

func TestInitDebugModeWritesStderr(t *testing.T) {
	var stderr bytes.Buffer
	err := Init(Config{
		Debug:     true,
		ConfigDir: t.TempDir(),
		Stderr:    &stderr,
	})
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	Debug("cache miss", "key", "habits/list")
	if !strings.Contains(stderr.String(), "cache miss") {
		t.Errorf("stderr = %q, want it to contain debug record", stderr.String())
	}
}

func TestInitLevelOverride(t *testing.T) {
	var stderr bytes.Buffer
	err := Init(Config{
		Debug:     true,
		Level:     "error",
		ConfigDir: t.TempDir(),
		Stderr:    &stderr,
	})
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	Info("should be filtered")
	if strings.Contains(stderr.String(), "should be filtered") {
		t.Errorf("info record written despite error level: %q", stderr.String())
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	if With("key", "value") != nil {
		t.Error("With() before Init should return nil")
	}
}
