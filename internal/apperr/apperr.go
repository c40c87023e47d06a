package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error for HTTP mapping.
type Kind int

const (
	// KindValidation is a field-level input failure (422)
	KindValidation Kind = iota
	// KindUnauthorized is a missing, malformed or expired credential (401)
	KindUnauthorized
	// KindForbidden is an authenticated but disallowed request (403)
	KindForbidden
	// KindNotFound covers both true absence and scope-hidden rows (404)
	KindNotFound
	// KindConflict is a uniqueness violation (409)
	KindConflict
	// KindInternal is anything unexpected (500)
	KindInternal
)

// Error is an application error with a user-facing message and, for
// validation failures, a field -> messages map.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns a 422 error with field-level messages.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// Unauthorized returns a 401 error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden returns a 403 error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound returns a 404 error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict returns a 409 error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected error without leaking its detail.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", cause: cause}
}

// From extracts an *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
