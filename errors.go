package aicreat

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTooLarge is returned when an upload exceeds the configured size limit
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType is returned when an upload has a disallowed extension
	ErrUnsupportedType = errors.New("unsupported file type")
)
