package emailverification

import "errors"

var (
	// ErrTokenNotFound is returned when a confirmation token is not found
	ErrTokenNotFound = errors.New("confirmation token not found")

	// ErrTokenExpired is returned when a confirmation token has expired
	ErrTokenExpired = errors.New("confirmation token has expired")

	// ErrTokenAlreadyUsed is returned when a confirmation token has already been used
	ErrTokenAlreadyUsed = errors.New("confirmation token has already been used")

	// ErrRateLimitExceeded is returned when too many confirmation emails were sent
	ErrRateLimitExceeded = errors.New("too many confirmation emails sent, please try again later")
)
