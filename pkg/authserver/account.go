package authserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/skycast-auth/pkg/authprovider"
	"github.com/tendant/skycast-auth/pkg/tokengenerator"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// Account is a stored user with its password hash
type Account struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	Role             string
	Metadata         map[string]any
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Confirmed reports whether the email address has been confirmed
func (a *Account) Confirmed() bool {
	return a.EmailConfirmedAt != nil
}

// ToUser converts the account to the user object returned to clients
func (a *Account) ToUser() *authprovider.User {
	role := a.Role
	if role == "" {
		role = tokengenerator.DefaultRole
	}
	metadata := a.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &authprovider.User{
		ID:               a.ID,
		Email:            a.Email,
		Role:             role,
		Metadata:         metadata,
		EmailConfirmedAt: a.EmailConfirmedAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// AccountRepository stores accounts. Emails are stored normalized and are
// unique.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) (*Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) (*Account, error)
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
