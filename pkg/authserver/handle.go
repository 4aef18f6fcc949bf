package authserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	autherrors "github.com/tendant/skycast-auth/pkg/errors"
	"github.com/tendant/skycast-auth/pkg/ratelimit"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	sessionIDKey contextKey = "session_id"

	grantTypePassword     = "password"
	grantTypeRefreshToken = "refresh_token"
	verifyTypeSignup      = "signup"
)

// Handle serves the auth endpoints
type Handle struct {
	service   *Service
	tokenAuth *jwtauth.JWTAuth
	logger    *slog.Logger
}

// NewHandle creates a Handle. tokenAuth verifies bearer tokens on /user and
// /logout and must match the generator the service mints tokens with.
func NewHandle(service *Service, tokenAuth *jwtauth.JWTAuth) Handle {
	return Handle{
		service:   service,
		tokenAuth: tokenAuth,
		logger:    slog.Default(),
	}
}

type signupRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data"`
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Handler returns the routes of h
func Handler(h Handle) http.Handler {
	r := chi.NewRouter()
	Routes(r, h)
	return r
}

// Routes registers the endpoints on r
func Routes(r chi.Router, h Handle) {
	r.Post("/signup", h.Signup)
	r.Post("/token", h.Token)
	r.Get("/verify", h.Verify)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(h.tokenAuth))
		r.Use(h.authenticated)
		r.Get("/user", h.GetUser)
		r.Post("/logout", h.Logout)
	})
}

// Signup creates an account
// (POST /signup)
func (h Handle) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.Warn("Failed to decode signup request", "error", err)
		autherrors.Write(w, r, badJSON())
		return
	}

	outcome, err := h.service.Signup(r.Context(), SignupParams{
		Email:      req.Email,
		Password:   req.Password,
		Data:       req.Data,
		RedirectTo: r.URL.Query().Get("redirect_to"),
		IPAddress:  ratelimit.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		autherrors.Write(w, r, err)
		return
	}

	if outcome.HasSession() {
		render.JSON(w, r, outcome.Session)
		return
	}
	render.JSON(w, r, outcome.User)
}

// Token issues sessions for the password and refresh_token grants
// (POST /token?grant_type=...)
func (h Handle) Token(w http.ResponseWriter, r *http.Request) {
	switch grantType := r.URL.Query().Get("grant_type"); grantType {
	case grantTypePassword:
		var req passwordGrantRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			autherrors.Write(w, r, badJSON())
			return
		}
		session, err := h.service.SignInWithPassword(r.Context(), req.Email, req.Password, ratelimit.ClientIP(r), r.UserAgent())
		if err != nil {
			autherrors.Write(w, r, err)
			return
		}
		render.JSON(w, r, session)

	case grantTypeRefreshToken:
		var req refreshTokenGrantRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			autherrors.Write(w, r, badJSON())
			return
		}
		session, err := h.service.RefreshSession(r.Context(), req.RefreshToken)
		if err != nil {
			autherrors.Write(w, r, err)
			return
		}
		render.JSON(w, r, session)

	default:
		h.logger.Warn("Unsupported grant type", "grant_type", grantType)
		autherrors.Write(w, r, autherrors.New(autherrors.ErrCodeUnsupportedGrant, "Unsupported grant type"))
	}
}

// Verify confirms an email address from the emailed link. It redirects to
// redirect_to when the link carries an allowed one and returns the user
// otherwise.
// (GET /verify?token=...&type=signup)
func (h Handle) Verify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("type") != verifyTypeSignup {
		autherrors.Write(w, r, autherrors.InvalidInput("Verify requires a verification type"))
		return
	}

	user, redirectTo, err := h.service.Verify(r.Context(), query.Get("token"))
	if err != nil {
		autherrors.Write(w, r, err)
		return
	}

	if override := query.Get("redirect_to"); override != "" {
		if h.service.AllowsRedirect(override) {
			redirectTo = override
		} else {
			h.logger.Warn("Ignoring redirect_to outside the allow list", "redirect_to", override)
		}
	}
	if redirectTo != "" && h.service.AllowsRedirect(redirectTo) {
		http.Redirect(w, r, redirectTo, http.StatusSeeOther)
		return
	}
	render.JSON(w, r, user)
}

// GetUser returns the bearer's user
// (GET /user)
func (h Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(uuid.UUID)
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		autherrors.Write(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

// Logout ends the bearer's session
// (POST /logout)
func (h Handle) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := r.Context().Value(sessionIDKey).(uuid.UUID)
	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		autherrors.Write(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// authenticated rejects requests without a valid bearer token and puts the
// token's user and session ids on the context
func (h Handle) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			if err == nil || errors.Is(err, jwtauth.ErrNoTokenFound) {
				autherrors.Write(w, r, autherrors.New(autherrors.ErrCodeNoAuthorization, "This endpoint requires a Bearer token"))
				return
			}
			h.logger.Info("Rejected bearer token", "error", err)
			autherrors.Write(w, r, autherrors.Wrap(err, autherrors.ErrCodeBadJWT, "invalid JWT: unable to parse or verify signature"))
			return
		}

		userID, err := uuid.Parse(token.Subject())
		if err != nil {
			autherrors.Write(w, r, autherrors.Wrap(err, autherrors.ErrCodeBadJWT, "invalid claim: sub claim must be a UUID"))
			return
		}
		sessionIDStr, _ := claims["session_id"].(string)
		sessionID, err := uuid.Parse(sessionIDStr)
		if err != nil {
			autherrors.Write(w, r, autherrors.Wrap(err, autherrors.ErrCodeBadJWT, "invalid claim: session_id claim must be a UUID"))
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func badJSON() error {
	return autherrors.New(autherrors.ErrCodeBadJSON, "Could not parse request body as JSON")
}
