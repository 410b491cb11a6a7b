package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNumericField is returned when a numeric setting cannot be parsed
	// or falls outside its allowed range.
	ErrInvalidNumericField = errors.New("invalid numeric field")
	// ErrInvalidEnumField is returned when a setting is not one of its allowed values.
	ErrInvalidEnumField = errors.New("invalid enum field")
)

// FieldError describes a setting that failed coercion or validation.
// It wraps ErrInvalidNumericField or ErrInvalidEnumField.
type FieldError struct {
	// Field is the environment variable name, e.g. MAX_FILE_SIZE.
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %s", e.Err, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
