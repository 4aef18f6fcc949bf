package authserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/skycast-auth/pkg/authprovider"
	"github.com/tendant/skycast-auth/pkg/emailverification"
	autherrors "github.com/tendant/skycast-auth/pkg/errors"
	"github.com/tendant/skycast-auth/pkg/sessions"
	"github.com/tendant/skycast-auth/pkg/signup"
	"github.com/tendant/skycast-auth/pkg/tokengenerator"
)

const (
	DefaultMinPasswordLength = 6
	tokenTypeBearer          = "bearer"
)

// Service implements account creation, sign-in and email confirmation
type Service struct {
	accounts          AccountRepository
	hasher            PasswordHasher
	tokens            *tokengenerator.JwtTokenGenerator
	sessions          *sessions.Service
	verification      *emailverification.EmailVerificationService
	autoconfirm       bool
	signupDisabled    bool
	minPasswordLength int
	redirects         RedirectAllowList
	now               func() time.Time
	logger            *slog.Logger
}

type Option func(*Service)

func WithHasher(hasher PasswordHasher) Option {
	return func(s *Service) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

// WithEmailVerification sets the service that issues confirmation links.
// Without it, unconfirmed accounts get no link.
func WithEmailVerification(v *emailverification.EmailVerificationService) Option {
	return func(s *Service) {
		s.verification = v
	}
}

// WithAutoconfirm confirms new accounts immediately and returns a session
// from signup
func WithAutoconfirm(autoconfirm bool) Option {
	return func(s *Service) {
		s.autoconfirm = autoconfirm
	}
}

func WithSignupDisabled(disabled bool) Option {
	return func(s *Service) {
		s.signupDisabled = disabled
	}
}

func WithMinPasswordLength(length int) Option {
	return func(s *Service) {
		if length > 0 {
			s.minPasswordLength = length
		}
	}
}

// WithRedirectURLs sets the addresses a confirmation link may redirect to.
// Without it no redirect_to is honored.
func WithRedirectURLs(urls ...string) Option {
	return func(s *Service) {
		s.redirects = NewRedirectAllowList(urls...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates the auth service
func NewService(accounts AccountRepository, tokens *tokengenerator.JwtTokenGenerator, sessionService *sessions.Service, opts ...Option) *Service {
	s := &Service{
		accounts:          accounts,
		hasher:            BcryptHasher{},
		tokens:            tokens,
		sessions:          sessionService,
		minPasswordLength: DefaultMinPasswordLength,
		now:               time.Now,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupParams are the inputs of a signup
type SignupParams struct {
	Email      string
	Password   string
	Data       map[string]any
	RedirectTo string
	IPAddress  string
	UserAgent  string
}

// Signup creates an account. With autoconfirm the outcome carries a
// session; otherwise a confirmation link is mailed and only the user is
// returned. Signing up again with an unconfirmed email mails a new link.
// A redirect_to outside the allow list is dropped.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*authprovider.Outcome, error) {
	if s.signupDisabled {
		return nil, autherrors.New(autherrors.ErrCodeSignupDisabled, "Signups not allowed for this instance")
	}

	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, autherrors.InvalidInput("To signup, please provide your email")
	}
	if !signup.IsEmailValid(email) {
		return nil, autherrors.New(autherrors.ErrCodeEmailInvalid, "Unable to validate email address: invalid format")
	}
	if len(params.Password) < s.minPasswordLength {
		return nil, autherrors.Newf(autherrors.ErrCodeWeakPassword, "Password should be at least %d characters.", s.minPasswordLength).
			WithDetail("reasons", []string{"length"})
	}

	redirectTo := params.RedirectTo
	if redirectTo != "" && !s.redirects.Allows(redirectTo) {
		s.logger.Warn("Ignoring redirect_to outside the allow list", "email", email, "redirect_to", redirectTo)
		redirectTo = ""
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, autherrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	now := s.now().UTC()
	account := Account{
		Email:        email,
		PasswordHash: hash,
		Role:         tokengenerator.DefaultRole,
		Metadata:     params.Data,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.autoconfirm {
		account.EmailConfirmedAt = &now
	}

	created, err := s.accounts.CreateAccount(ctx, account)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			return s.signupExisting(ctx, email, redirectTo)
		}
		return nil, autherrors.Internal(fmt.Errorf("failed to create account: %w", err))
	}
	s.logger.Info("Account created", "user_id", created.ID, "email", email, "autoconfirm", s.autoconfirm)

	if s.autoconfirm {
		session, err := s.startSession(ctx, created, params.IPAddress, params.UserAgent)
		if err != nil {
			return nil, err
		}
		return &authprovider.Outcome{User: session.User, Session: session}, nil
	}

	if err := s.sendConfirmation(ctx, created, redirectTo); err != nil {
		return nil, err
	}
	return &authprovider.Outcome{User: created.ToUser()}, nil
}

// signupExisting handles a signup for a registered email. A confirmed
// account is rejected. An unconfirmed one gets a fresh confirmation link;
// its password and metadata are left as they were.
func (s *Service) signupExisting(ctx context.Context, email, redirectTo string) (*authprovider.Outcome, error) {
	existing, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, autherrors.Internal(fmt.Errorf("failed to load account: %w", err))
	}
	if existing.Confirmed() {
		s.logger.Info("Signup rejected, email already registered", "email", email)
		return nil, autherrors.New(autherrors.ErrCodeUserAlreadyExists, "User already registered")
	}

	s.logger.Info("Signup repeated for unconfirmed account, resending confirmation", "user_id", existing.ID)
	if err := s.sendConfirmation(ctx, existing, redirectTo); err != nil {
		return nil, err
	}
	return &authprovider.Outcome{User: existing.ToUser()}, nil
}

func (s *Service) sendConfirmation(ctx context.Context, account *Account, redirectTo string) error {
	if s.verification == nil {
		s.logger.Warn("Email verification not configured, no confirmation link sent", "user_id", account.ID)
		return nil
	}
	user := account.ToUser()
	if _, err := s.verification.Issue(ctx, account.ID, account.Email, user.FullName(), redirectTo); err != nil {
		if errors.Is(err, emailverification.ErrRateLimitExceeded) {
			return autherrors.New(autherrors.ErrCodeEmailRateLimited, "Email rate limit exceeded")
		}
		return autherrors.Internal(fmt.Errorf("failed to issue confirmation: %w", err))
	}
	return nil
}

// AllowsRedirect reports whether raw is on the redirect allow list
func (s *Service) AllowsRedirect(raw string) bool {
	return s.redirects.Allows(raw)
}

// SignInWithPassword is the password grant
func (s *Service) SignInWithPassword(ctx context.Context, email, password, ipAddress, userAgent string) (*authprovider.Session, error) {
	if email == "" || password == "" {
		return nil, autherrors.InvalidInput("Email and password are required")
	}

	invalid := autherrors.New(autherrors.ErrCodeInvalidCredentials, "Invalid login credentials")

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.logger.Info("Sign in failed, unknown email", "email", email)
			return nil, invalid
		}
		return nil, autherrors.Internal(err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, autherrors.Internal(fmt.Errorf("failed to verify password: %w", err))
	}
	if !ok {
		s.logger.Info("Sign in failed, wrong password", "user_id", account.ID)
		return nil, invalid
	}
	if !account.Confirmed() {
		return nil, autherrors.New(autherrors.ErrCodeEmailNotConfirmed, "Email not confirmed")
	}

	return s.startSession(ctx, account, ipAddress, userAgent)
}

// RefreshSession is the refresh_token grant. The presented token is
// rotated.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (*authprovider.Session, error) {
	if refreshToken == "" {
		return nil, autherrors.InvalidInput("refresh_token required")
	}

	session, err := s.sessions.Refresh(ctx, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			return nil, autherrors.New(autherrors.ErrCodeRefreshTokenNotFound, "Invalid Refresh Token: Refresh Token Not Found")
		case errors.Is(err, sessions.ErrRefreshTokenReused):
			return nil, autherrors.New(autherrors.ErrCodeRefreshTokenReused, "Invalid Refresh Token: Already Used")
		case errors.Is(err, sessions.ErrSessionExpired):
			return nil, autherrors.New(autherrors.ErrCodeSessionNotFound, "Invalid Refresh Token: Session Expired")
		}
		return nil, autherrors.Internal(err)
	}

	account, err := s.accounts.GetAccountByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, autherrors.New(autherrors.ErrCodeUserNotFound, "User not found")
		}
		return nil, autherrors.Internal(err)
	}
	return s.issueSession(account, session)
}

// Verify redeems a signup confirmation token and confirms the account. It
// returns the user and the redirect address stored with the token. Confirming
// retires every other outstanding link of the account.
func (s *Service) Verify(ctx context.Context, token string) (*authprovider.User, string, error) {
	if token == "" {
		return nil, "", autherrors.InvalidInput("Verify requires a token")
	}
	if s.verification == nil {
		return nil, "", autherrors.New(autherrors.ErrCodeOTPExpired, "Email link is invalid or has expired")
	}

	vt, err := s.verification.Confirm(ctx, token)
	if err != nil {
		if errors.Is(err, emailverification.ErrTokenNotFound) || errors.Is(err, emailverification.ErrTokenExpired) {
			return nil, "", autherrors.New(autherrors.ErrCodeOTPExpired, "Email link is invalid or has expired")
		}
		return nil, "", autherrors.Internal(err)
	}

	account, err := s.accounts.ConfirmEmail(ctx, vt.UserID, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, "", autherrors.New(autherrors.ErrCodeUserNotFound, "User not found")
		}
		return nil, "", autherrors.Internal(err)
	}
	s.logger.Info("Email confirmed", "user_id", account.ID)
	return account.ToUser(), vt.RedirectTo, nil
}

// GetUser returns the user with the given id
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*authprovider.User, error) {
	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, autherrors.New(autherrors.ErrCodeUserNotFound, "User not found")
		}
		return nil, autherrors.Internal(err)
	}
	return account.ToUser(), nil
}

// Logout ends a session. Its refresh token stops working; access tokens
// already issued stay valid until they expire.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.End(ctx, sessionID); err != nil {
		return autherrors.Internal(err)
	}
	return nil
}

func (s *Service) startSession(ctx context.Context, account *Account, ipAddress, userAgent string) (*authprovider.Session, error) {
	session, err := s.sessions.Start(ctx, account.ID, ipAddress, userAgent)
	if err != nil {
		return nil, autherrors.Internal(err)
	}
	s.logger.Info("Signed in", "user_id", account.ID, "session_id", session.ID)
	return s.issueSession(account, session)
}

func (s *Service) issueSession(account *Account, session *sessions.Session) (*authprovider.Session, error) {
	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(tokengenerator.Subject{
		UserID:    account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Metadata:  account.Metadata,
		SessionID: session.ID,
	})
	if err != nil {
		return nil, autherrors.Internal(err)
	}

	return &authprovider.Session{
		AccessToken:  accessToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(s.tokens.Expiry.Seconds()),
		ExpiresAt:    expiresAt.Unix(),
		RefreshToken: session.RefreshToken,
		User:         account.ToUser(),
	}, nil
}
