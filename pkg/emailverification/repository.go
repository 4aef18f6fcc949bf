package emailverification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VerificationToken is a single-use email confirmation token
type VerificationToken struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Email      string
	Token      string
	RedirectTo string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	VerifiedAt *time.Time
	DeletedAt  *time.Time
}

// Repository stores confirmation tokens
type Repository interface {
	CreateToken(ctx context.Context, token VerificationToken) (*VerificationToken, error)
	// GetTokenByValue returns a token that is neither deleted nor used
	GetTokenByValue(ctx context.Context, token string) (*VerificationToken, error)
	MarkTokenAsVerified(ctx context.Context, tokenID uuid.UUID, at time.Time) error
	SoftDeleteUserTokens(ctx context.Context, userID uuid.UUID) error
	CountRecentTokensByUserID(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	CleanupExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
