package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/logger"
)

// UserError is implemented by errors that carry a message fit for display
// without the wrapping context added on the way up.
type UserError interface {
	error
	UserMessage() string
}

// Message returns the message a user should see for err. It prefers the
// innermost UserError in the chain and falls back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ue UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return err.Error()
}

// Format prefixes the user-facing message of err with "Error: "
func Format(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + Message(err)
}

func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs err, prints it to stderr and exits with status 1. A nil err is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}

func Fatalf(format string, args ...interface{}) {
	logger.Error("Command execution failed", "error", fmt.Sprintf(format, args...))
	fmt.Fprintln(os.Stderr, Formatf(format, args...))
	os.Exit(1)
}
