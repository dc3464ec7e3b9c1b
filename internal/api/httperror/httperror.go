// Package httperror defines the errors handlers and middleware forward to the
// HTTP error handler. Each one carries the status and client-safe message
// that will be rendered; the underlying cause is only ever logged.
package httperror

import (
	"fmt"
	"net/http"
)

// FieldError describes a single rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a structured HTTP error.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation reports a request body that failed its schema.
func Validation(fields []FieldError) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: "validation failed", Fields: fields}
}

// Unauthorized never says why; callers log the reason themselves.
func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "authorization error"}
}

// Conflict reports a resource that already exists.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: msg}
}

// Internal hides cause from the client.
func Internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error", Cause: cause}
}
