package emailverification

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/skycast-auth/pkg/notification"
	"github.com/tendant/skycast-auth/pkg/tokengenerator"
)

// Sender delivers notices; *notification.NotificationManager implements it
type Sender interface {
	Send(noticeType notification.NoticeType, data notification.NotificationData) error
}

// EmailVerificationService issues and redeems signup confirmation tokens
type EmailVerificationService struct {
	repo         Repository
	sender       Sender
	verifyURL    string
	tokenExpiry  time.Duration
	resendLimit  int
	resendWindow time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// EmailVerificationServiceOption defines configuration options
type EmailVerificationServiceOption func(*EmailVerificationService)

// WithTokenExpiry sets the token expiration duration
func WithTokenExpiry(expiry time.Duration) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		if expiry > 0 {
			s.tokenExpiry = expiry
		}
	}
}

// WithResendLimit sets how many tokens a user may be issued within the
// resend window
func WithResendLimit(limit int, window time.Duration) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		s.resendLimit = limit
		s.resendWindow = window
	}
}

func WithSender(sender Sender) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		s.sender = sender
	}
}

func WithLogger(logger *slog.Logger) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewEmailVerificationService creates a service. verifyURL is the public
// address of the verify endpoint the emailed link points at.
func NewEmailVerificationService(repo Repository, verifyURL string, opts ...EmailVerificationServiceOption) *EmailVerificationService {
	s := &EmailVerificationService{
		repo:         repo,
		verifyURL:    verifyURL,
		tokenExpiry:  24 * time.Hour,
		resendLimit:  3,
		resendWindow: time.Hour,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a confirmation token for the user and emails the link.
// Sending is best effort: the token is returned even when delivery fails.
func (s *EmailVerificationService) Issue(ctx context.Context, userID uuid.UUID, email, name, redirectTo string) (*VerificationToken, error) {
	now := s.now().UTC()

	if s.resendLimit > 0 {
		count, err := s.repo.CountRecentTokensByUserID(ctx, userID, now.Add(-s.resendWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to check rate limit: %w", err)
		}
		if count >= int64(s.resendLimit) {
			s.logger.Warn("Confirmation rate limit exceeded", "user_id", userID, "count", count, "limit", s.resendLimit)
			return nil, ErrRateLimitExceeded
		}
	}

	value, err := tokengenerator.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	token, err := s.repo.CreateToken(ctx, VerificationToken{
		UserID:     userID,
		Email:      email,
		Token:      value,
		RedirectTo: redirectTo,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.tokenExpiry),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create confirmation token: %w", err)
	}

	if err := s.send(email, name, s.ConfirmationLink(value, redirectTo)); err != nil {
		s.logger.Error("Failed to send confirmation email", "user_id", userID, "error", err)
	}

	s.logger.Info("Confirmation token created", "user_id", userID, "token_id", token.ID, "expires_at", token.ExpiresAt)
	return token, nil
}

// Confirm redeems a token. The caller marks the account confirmed.
func (s *EmailVerificationService) Confirm(ctx context.Context, value string) (*VerificationToken, error) {
	token, err := s.repo.GetTokenByValue(ctx, value)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if now.After(token.ExpiresAt) {
		s.logger.Warn("Token expired", "token_id", token.ID, "expires_at", token.ExpiresAt)
		return nil, ErrTokenExpired
	}

	if err := s.repo.MarkTokenAsVerified(ctx, token.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark token as verified: %w", err)
	}
	token.VerifiedAt = &now

	// Outstanding links for the same user are no longer needed
	if err := s.repo.SoftDeleteUserTokens(ctx, token.UserID); err != nil {
		s.logger.Error("Failed to soft delete user tokens", "user_id", token.UserID, "error", err)
	}

	s.logger.Info("Email confirmed", "user_id", token.UserID, "token_id", token.ID)
	return token, nil
}

// CleanupExpiredTokens removes expired, unused tokens
func (s *EmailVerificationService) CleanupExpiredTokens(ctx context.Context) error {
	removed, err := s.repo.CleanupExpiredTokens(ctx, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}
	s.logger.Info("Expired confirmation tokens cleaned up", "removed", removed)
	return nil
}

// ConfirmationLink builds the link sent to the user
func (s *EmailVerificationService) ConfirmationLink(token, redirectTo string) string {
	query := url.Values{}
	query.Set("token", token)
	query.Set("type", "signup")
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return s.verifyURL + "?" + query.Encode()
}

func (s *EmailVerificationService) send(email, name, link string) error {
	if s.sender == nil {
		s.logger.Warn("Notification sender not configured, skipping email send", "email", email)
		return nil
	}
	return s.sender.Send(notification.SignupConfirmation, notification.NotificationData{
		To: email,
		Data: map[string]string{
			"Name":             name,
			"ConfirmationLink": link,
			"ExpiryHours":      fmt.Sprintf("%.0f", s.tokenExpiry.Hours()),
		},
	})
}
