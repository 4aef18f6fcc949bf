package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a machine-readable error code. Values match the error_code
// strings GoTrue clients already understand.
type ErrorCode string

const (
	// Generic errors
	ErrCodeInternal         ErrorCode = "unexpected_failure"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeBadJSON          ErrorCode = "bad_json"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeRateLimited      ErrorCode = "over_request_rate_limit"
	ErrCodeEmailRateLimited ErrorCode = "over_email_send_rate_limit"

	// Signup errors
	ErrCodeUserAlreadyExists ErrorCode = "user_already_exists"
	ErrCodeWeakPassword      ErrorCode = "weak_password"
	ErrCodeEmailInvalid      ErrorCode = "email_address_invalid"
	ErrCodeSignupDisabled    ErrorCode = "signup_disabled"

	// Sign-in errors
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	ErrCodeEmailNotConfirmed  ErrorCode = "email_not_confirmed"
	ErrCodeUnsupportedGrant   ErrorCode = "unsupported_grant_type"

	// Token and session errors
	ErrCodeBadJWT               ErrorCode = "bad_jwt"
	ErrCodeNoAuthorization      ErrorCode = "no_authorization"
	ErrCodeSessionNotFound      ErrorCode = "session_not_found"
	ErrCodeRefreshTokenNotFound ErrorCode = "refresh_token_not_found"
	ErrCodeRefreshTokenReused   ErrorCode = "refresh_token_already_used"
	ErrCodeOTPExpired           ErrorCode = "otp_expired"
	ErrCodeUserNotFound         ErrorCode = "user_not_found"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
// Returns ErrCodeInternal if the error is not a structured Error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// MapErrorCodeToHTTPStatus maps error codes to the HTTP status GoTrue uses
// for them
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeBadJSON, ErrCodeEmailInvalid,
		ErrCodeInvalidCredentials, ErrCodeEmailNotConfirmed,
		ErrCodeUnsupportedGrant, ErrCodeRefreshTokenNotFound,
		ErrCodeRefreshTokenReused:
		return http.StatusBadRequest

	case ErrCodeBadJWT, ErrCodeNoAuthorization, ErrCodeSessionNotFound:
		return http.StatusUnauthorized

	case ErrCodeOTPExpired, ErrCodeSignupDisabled:
		return http.StatusForbidden

	case ErrCodeNotFound, ErrCodeUserNotFound:
		return http.StatusNotFound

	case ErrCodeUserAlreadyExists, ErrCodeWeakPassword:
		return http.StatusUnprocessableEntity

	case ErrCodeRateLimited, ErrCodeEmailRateLimited:
		return http.StatusTooManyRequests

	case ErrCodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors

// InvalidInput creates a validation error
func InvalidInput(message string) *Error {
	return New(ErrCodeValidationFailed, message)
}

// Internal wraps an unexpected failure. The cause is kept for logging and
// never sent to clients.
func Internal(err error) *Error {
	return &Error{Code: ErrCodeInternal, Message: "Unexpected failure, please check server logs for more information", Err: err}
}

// RateLimited creates a rate limit error
func RateLimited(retryAfter string) *Error {
	err := New(ErrCodeRateLimited, "Request rate limit reached")
	if retryAfter != "" {
		err.WithDetail("retry_after", retryAfter)
	}
	return err
}
