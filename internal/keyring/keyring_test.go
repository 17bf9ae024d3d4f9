package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	if err := Set("access_token", "tok-123"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := Get("access_token")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("Get() = %q, want %q", got, "tok-123")
	}
}

func TestSetEmptyKey(t *testing.T) {
	gokeyring.MockInit()

	if err := Set("", "value"); err == nil {
		t.Error("Set with empty key should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()

	_, err := Get("user")
	if err != ErrNotFound {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Set("user", `{"id":1}`); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete("user"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get("user"); err != ErrNotFound {
		t.Errorf("after Delete, Get() error = %v, want %v", err, ErrNotFound)
	}
	if err := Delete("user"); err != ErrNotFound {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
