package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aicreat/aicreat"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, aicreat.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, aicreat.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, aicreat.ErrUnauthorized), errors.Is(err, ErrMissingToken):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid or missing credentials")
	case errors.Is(err, aicreat.ErrTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "too_large", err.Error())
	case errors.Is(err, aicreat.ErrUnsupportedType):
		WriteError(w, http.StatusUnsupportedMediaType, "unsupported_type", err.Error())
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
