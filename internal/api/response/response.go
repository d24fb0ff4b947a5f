// Package response provides utilities for sending consistent HTTP responses.
// It includes helpers for JSON responses and standardized error responses.
package response

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/validation"
)

// ErrorResponse represents a structured error response returned by the API.
// The Details field is optional and can contain additional context about the error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent (useful for 204 No Content).
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// RespondError sends a structured error response with the given status code.
// The message should be a user-friendly error description.
// The details parameter can be an error string, additional context, or nil.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
//	response.RespondError(w, http.StatusNotFound, "resource not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	response := ErrorResponse{
		Error:   message,
		Details: details,
	}
	RespondJSON(w, status, response)
}

// RespondServiceError maps a service error onto a status code. Validation
// errors answer 400 with the field map as details, not-found errors answer
// 404, and anything else answers 500 with message.
func RespondServiceError(w http.ResponseWriter, err error, message string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case IsNotFound(err):
		RespondError(w, http.StatusNotFound, rootMessage(err), err.Error())
	default:
		RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}

var notFound = []error{
	apperrors.ErrPositionNotFound,
	apperrors.ErrTransactionNotFound,
	apperrors.ErrDividendNotFound,
	apperrors.ErrAlertNotFound,
	apperrors.ErrSymbolNotFound,
}

// IsNotFound reports whether err wraps one of the not-found sentinels.
func IsNotFound(err error) bool {
	for _, target := range notFound {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func rootMessage(err error) string {
	for _, target := range notFound {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
