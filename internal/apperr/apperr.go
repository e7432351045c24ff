// Package apperr defines the operational error taxonomy shared by services
// and the HTTP layer. An operational error carries its intended HTTP status
// and a message that is safe to show to the caller; anything else is treated
// as an internal fault and rendered generically in production.
package apperr

import (
	"errors"
	"net/http"
)

// Error is an anticipated failure with a caller-safe message.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an operational error with an explicit status.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// Internal wraps an unexpected error. The wrapped detail is logged, never
// returned to the caller outside development mode.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Something went wrong, try again later!", Err: err}
}

// From extracts the operational error from err, or wraps err as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsOperational reports whether err was raised deliberately with a status.
func IsOperational(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError
}
