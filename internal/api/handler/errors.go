package handler

import (
	"net/http"

	"github.com/mcoot/gideon/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeValidationFailed   = apierr.CodeValidationFailed
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeForbidden          = apierr.CodeForbidden
	CodePlayerNotFound     = apierr.CodePlayerNotFound
	CodeClanNotFound       = apierr.CodeClanNotFound
	CodeRoleNotFound       = apierr.CodeRoleNotFound
	CodeProfileNotFound    = apierr.CodeProfileNotFound
	CodeLookupRateLimited  = apierr.CodeLookupRateLimited
	CodeLookupFailed       = apierr.CodeLookupFailed
	CodeBrokenReference    = apierr.CodeBrokenReference
	CodePersistenceFailed  = apierr.CodePersistenceFailed
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}
