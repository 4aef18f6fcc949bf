package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/skycast-auth/pkg/tokengenerator"
)

const DefaultRefreshTokenExpiry = 30 * 24 * time.Hour

// Service starts, refreshes and ends sessions
type Service struct {
	repo   Repository
	expiry time.Duration
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Service)

// WithRefreshTokenExpiry sets how long a session lives without a refresh
func WithRefreshTokenExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		if expiry > 0 {
			s.expiry = expiry
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new session service
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		expiry: DefaultRefreshTokenExpiry,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates a session for userID
func (s *Service) Start(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) (*Session, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	token, err := tokengenerator.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := Session{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: token,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    now,
		RefreshedAt:  now,
		ExpiresAt:    now.Add(s.expiry),
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Session started", "session_id", session.ID, "user_id", userID)
	return &session, nil
}

// Refresh exchanges a refresh token for a new one on the same session. The
// old token stops working. Of several concurrent refreshes with the same
// token only one succeeds; the others get ErrRefreshTokenReused.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	session, err := s.repo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if session.Expired(now) {
		_ = s.repo.Delete(ctx, session.ID)
		return nil, ErrSessionExpired
	}

	token, err := tokengenerator.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}
	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenReused) {
			s.logger.Warn("Refresh token reused", "session_id", session.ID, "user_id", session.UserID)
			return nil, err
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	session.RefreshToken = token
	session.RefreshedAt = now
	session.ExpiresAt = now.Add(s.expiry)
	if err := s.repo.Save(ctx, *session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Session refreshed", "session_id", session.ID, "user_id", session.UserID)
	return session, nil
}

// Get returns a live session
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// End deletes a session. Ending an unknown session is not an error.
func (s *Service) End(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("Session ended", "session_id", id)
	return nil
}
