package handlers

import (
	"net/http"

	"kvops-api/internal/router"
	"kvops-api/internal/store"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusForError maps a router failure to its HTTP status. Router-level
// errors are the caller's fault; store failures surface as a bad upstream.
func statusForError(err error) int {
	switch {
	case router.IsMissingOperation(err), router.IsUnknownOperation(err):
		return http.StatusBadRequest
	case store.IsStoreError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// titleForError gives the short error label used alongside the message
func titleForError(err error) string {
	switch {
	case router.IsMissingOperation(err):
		return "Missing operation"
	case router.IsUnknownOperation(err):
		return "Unrecognized operation"
	case store.IsStoreError(err):
		return "Store operation failed"
	default:
		return "Internal server error"
	}
}

// newErrorResponse builds the response body for a handler failure. The
// store's own message passes through untouched.
func newErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Error:   titleForError(err),
		Message: err.Error(),
	}
}
