package sessions

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores sessions and the index from refresh token to session
type Repository interface {
	// Save creates or replaces a session and indexes its refresh token
	Save(ctx context.Context, session Session) error

	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*Session, error)

	// RevokeRefreshToken removes a refresh token from the index only. It
	// returns ErrRefreshTokenReused when the token was no longer indexed,
	// so exactly one caller can revoke a given token.
	RevokeRefreshToken(ctx context.Context, token string) error

	// Delete removes the session and its current refresh token
	Delete(ctx context.Context, id uuid.UUID) error
}
