package authprovider

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MetadataFullName is the user metadata key the signup screen fills in.
const MetadataFullName = "full_name"

// User is the account record returned by the provider
type User struct {
	ID               uuid.UUID      `json:"id"`
	Email            string         `json:"email"`
	Role             string         `json:"role,omitempty"`
	Metadata         map[string]any `json:"user_metadata,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// FullName returns the full_name metadata value, or "" when absent.
func (u *User) FullName() string {
	if u == nil || u.Metadata == nil {
		return ""
	}
	name, _ := u.Metadata[MetadataFullName].(string)
	return name
}

// Session is an authenticated session issued by the provider
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// Expiry returns the session expiry as a time, zero when unknown
func (s *Session) Expiry() time.Time {
	if s == nil || s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(s.ExpiresAt, 0).UTC()
}

// Outcome is the result of a create-account call.
// A nil Session means the provider expects the user to confirm their email
// before signing in.
type Outcome struct {
	User    *User
	Session *Session
}

// HasSession reports whether the account was signed in immediately.
func (o *Outcome) HasSession() bool {
	return o != nil && o.Session != nil
}

// Provider creates accounts on the remote authentication backend
type Provider interface {
	CreateAccount(ctx context.Context, email, password string, metadata map[string]string) (*Outcome, error)
}

// Authenticator signs existing accounts in
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, email, password string, metadata map[string]string) (*Outcome, error)

// CreateAccount implements Provider
func (f ProviderFunc) CreateAccount(ctx context.Context, email, password string, metadata map[string]string) (*Outcome, error) {
	return f(ctx, email, password, metadata)
}

// AuthenticatorFunc adapts a function to the Authenticator interface
type AuthenticatorFunc func(ctx context.Context, email, password string) (*Session, error)

// SignIn implements Authenticator
func (f AuthenticatorFunc) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return f(ctx, email, password)
}
