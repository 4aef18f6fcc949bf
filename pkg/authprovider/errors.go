package authprovider

import (
	"errors"
	"fmt"
)

const defaultErrorMessage = "Something went wrong. Please try again."

// Error is the single error kind surfaced by a provider. Message is the
// human-readable description shown to the user as-is.
type Error struct {
	StatusCode int    // HTTP status, 0 for transport failures
	Code       string // provider error code, e.g. "user_already_exists"
	Message    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return defaultErrorMessage
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a provider error with the given description
func NewError(message string) *Error {
	return &Error{Message: message}
}

// Errorf creates a provider error with a formatted description
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps a transport or decoding failure with a description
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}

// Describe returns the human-readable description of err.
// Errors that are not provider errors fall back to err.Error().
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return err.Error()
}

// CodeOf returns the provider error code of err, or "" when none.
func CodeOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
