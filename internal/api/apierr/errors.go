package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/services/auth"
	"github.com/mcoot/gideon/internal/services/lookup"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeClanNotFound       = "CLAN_NOT_FOUND"
	CodeRoleNotFound       = "ROLE_NOT_FOUND"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodeLookupRateLimited  = "LOOKUP_RATE_LIMITED"
	CodeLookupFailed       = "LOOKUP_FAILED"
	CodeBrokenReference    = "BROKEN_REFERENCE"
	CodePersistenceFailed  = "PERSISTENCE_FAILED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var status *lookup.StatusError

	// Validation and lookup misses carry useful detail, so their message is passed through
	switch {
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeValidationFailed, err.Error()}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, err.Error()}}
	case errors.Is(err, model.ErrClanNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeClanNotFound, err.Error()}}
	case errors.Is(err, model.ErrRoleNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoleNotFound, err.Error()}}
	case errors.Is(err, model.ErrBrokenReference):
		return &httpError{http.StatusInternalServerError, APIError{CodeBrokenReference, err.Error()}}
	case errors.Is(err, model.ErrPersistence):
		return &httpError{http.StatusInternalServerError, APIError{CodePersistenceFailed, "Registry changed but could not be saved"}}

	// Map lookup errors
	case errors.Is(err, lookup.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "No account with that name"}}
	case errors.Is(err, lookup.ErrRateLimited):
		return &httpError{http.StatusTooManyRequests, APIError{CodeLookupRateLimited, "Lookup service rate limit reached"}}
	case errors.As(err, &status):
		return &httpError{http.StatusBadGateway, APIError{CodeLookupFailed, status.Error()}}

	// Map auth errors
	case errors.Is(err, auth.ErrForbidden):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, err.Error()}}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid API token"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error. A non-empty requestID
// is echoed so operators can find the matching log line.
func NewInternalError(requestID string) error {
	msg := "Internal server error"
	if requestID != "" {
		msg += " (request " + requestID + ")"
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, msg}}
}
