package validators

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every [ValidationError].
	ErrInvalidInput = errors.New("invalid input")

	ErrUnsupportedType   = errors.New("unsupported type for validation")
	ErrTranslatorMissing = errors.New("translator not found")
)

// ValidationError maps a JSON field name to a human readable message.
type ValidationError map[string]string

// Error implements the error interface.
func (e ValidationError) Error() string {
	if len(e) == 0 {
		return ErrInvalidInput.Error()
	}

	b, err := json.Marshal(map[string]string(e))
	if err != nil {
		return fmt.Sprintf("%s (failed to marshal: %v)", ErrInvalidInput, err)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, b)
}

// Unwrap lets callers match the error with errors.Is(err, ErrInvalidInput).
func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Fields returns the per-field messages.
func (e ValidationError) Fields() map[string]string {
	return e
}
