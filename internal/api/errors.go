package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTimeout wraps requests that exceeded the client timeout
var ErrTimeout = errors.New("request timed out")

// Error is a non-2xx response from the API
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
}

// UserMessage is the server-provided message, suitable for display
func (e *Error) UserMessage() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func hasStatus(err error, status int) bool {
	return StatusCode(err) == status
}

// errorBody covers the shapes the server uses for failures. message is a
// string for most errors and a list of strings for request validation.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

// extractMessage prefers body.message, then body.error, then a generic
// status line.
func extractMessage(status int, body []byte) string {
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		if msg := rawMessage(eb.Message); msg != "" {
			return msg
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return fmt.Sprintf("Request failed with status code %d", status)
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
