package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/habitual/internal/constants"
)

// Field names used as FieldErrors keys
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldUsername    = "username"
	FieldPassword    = "password"
)

var (
	ErrNameRequired       = errors.New("Habit name is required")
	ErrNameTooShort       = fmt.Errorf("Habit name must be at least %d characters", constants.HabitNameMinLen)
	ErrNameTooLong        = fmt.Errorf("Habit name must be less than %d characters", constants.HabitNameMaxLen)
	ErrDescriptionTooLong = fmt.Errorf("Description must be less than %d characters", constants.HabitDescriptionMaxLen)
	ErrUsernameRequired   = errors.New("Username is required")
	ErrPasswordRequired   = errors.New("Password is required")
)

// FieldErrors maps a form field to its validation message. A non-empty
// FieldErrors is returned as an error; callers render each entry next to
// its field.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessage joins the field messages without field prefixes
func (fe FieldErrors) UserMessage() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fe[f])
	}
	return strings.Join(msgs, "; ")
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// HabitName checks a habit name after trimming surrounding whitespace
func HabitName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	switch {
	case n == 0:
		return ErrNameRequired
	case n < constants.HabitNameMinLen:
		return ErrNameTooShort
	case n > constants.HabitNameMaxLen:
		return ErrNameTooLong
	}
	return nil
}

// HabitDescription checks an optional description after trimming
func HabitDescription(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > constants.HabitDescriptionMaxLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Habit validates the create form and returns FieldErrors or nil
func Habit(name, description string) error {
	fe := FieldErrors{}
	if err := HabitName(name); err != nil {
		fe[FieldName] = err.Error()
	}
	if err := HabitDescription(description); err != nil {
		fe[FieldDescription] = err.Error()
	}
	return fe.orNil()
}

func Required(err error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return err
		}
		return nil
	}
}

// Credentials validates the login form. Both fields must be non-empty after trimming.
func Credentials(username, password string) error {
	fe := FieldErrors{}
	if err := Required(ErrUsernameRequired)(username); err != nil {
		fe[FieldUsername] = err.Error()
	}
	if err := Required(ErrPasswordRequired)(password); err != nil {
		fe[FieldPassword] = err.Error()
	}
	return fe.orNil()
}
