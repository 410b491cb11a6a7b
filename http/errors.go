package http

import "errors"

// ErrMissingToken is returned when a protected route is called without a bearer token.
var ErrMissingToken = errors.New("missing bearer token")
