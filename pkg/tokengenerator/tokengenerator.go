package tokengenerator

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTokenExpiry = time.Hour
	DefaultRole              = "authenticated"
	DefaultAudience          = "authenticated"
)

// Claims are the access token claims. They follow the GoTrue layout so
// clients written against the hosted service can read them.
type Claims struct {
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// Subject describes who an access token is issued to
type Subject struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	Metadata  map[string]any
	SessionID uuid.UUID
}

// JwtTokenGenerator mints and parses HS256 access tokens
type JwtTokenGenerator struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration

	now func() time.Time
}

// NewJwtTokenGenerator creates a generator. A zero expiry uses
// DefaultAccessTokenExpiry.
func NewJwtTokenGenerator(secret, issuer string, expiry time.Duration) *JwtTokenGenerator {
	if expiry <= 0 {
		expiry = DefaultAccessTokenExpiry
	}
	return &JwtTokenGenerator{
		Secret:   secret,
		Issuer:   issuer,
		Audience: DefaultAudience,
		Expiry:   expiry,
		now:      time.Now,
	}
}

// GenerateAccessToken signs an access token for sub and returns it with
// its expiry time.
func (g *JwtTokenGenerator) GenerateAccessToken(sub Subject) (string, time.Time, error) {
	role := sub.Role
	if role == "" {
		role = DefaultRole
	}
	now := g.clock()().UTC().Truncate(time.Second)
	claims := Claims{
		Email:        sub.Email,
		Role:         role,
		UserMetadata: sub.Metadata,
		SessionID:    sub.SessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(g.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    g.Issuer,
			Subject:   sub.UserID.String(),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{g.Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed sign JWT Claim string!", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}

// ParseAccessToken validates tokenStr and returns its claims
func (g *JwtTokenGenerator) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(g.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.clock()),
		jwt.WithAudience(g.Audience),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("access token is invalid")
	}
	return claims, nil
}

func (g *JwtTokenGenerator) clock() func() time.Time {
	if g.now == nil {
		return time.Now
	}
	return g.now
}

// JWTAuth returns a jwtauth verifier for tokens minted by g, for use with
// jwtauth.Verifier on protected routes.
func (g *JwtTokenGenerator) JWTAuth() *jwtauth.JWTAuth {
	return jwtauth.New(jwt.SigningMethodHS256.Alg(), []byte(g.Secret), nil)
}

// GenerateOpaqueToken returns a random URL-safe token, used for refresh
// tokens and confirmation links.
func GenerateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
