// Package apperr defines the application error taxonomy shared by the
// service layer and the HTTP boundary. Services return the most specific
// kind they can determine; the boundary maps kinds to status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is the fallback for unexpected store or infrastructure
	// failures.
	Internal Kind = iota
	// BadRequest marks malformed input or ids.
	BadRequest
	// Unauthorized marks missing, invalid, or expired credentials.
	Unauthorized
	// Forbidden marks an authenticated caller denied by policy.
	Forbidden
	// NotFound marks an absent resource.
	NotFound
	// Conflict marks a uniqueness or duplicate violation.
	Conflict
	// TooManyAttempts marks a rate-limited request.
	TooManyAttempts
)

// Error is an application error carrying a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error that wraps an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err. Errors outside the taxonomy are
// reported as Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// MessageOf extracts the user-facing message from err. Errors outside
// the taxonomy yield a generic message so internal detail never leaks.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case TooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
