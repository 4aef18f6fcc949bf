package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/skycast-auth/pkg/authprovider"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL+"/", "anon-key", WithRedirectTo("skycast://login"))
}

func TestClient_CreateAccountPendingConfirmation(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, "skycast://login", r.URL.Query().Get("redirect_to"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		var req signupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jane@example.com", req.Email)
		assert.Equal(t, "secret1", req.Password)
		assert.Equal(t, map[string]string{"full_name": "Jane Doe"}, req.Data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "6f1c2e43-4f0e-4d36-9a3e-2f1f6f4f8a10",
			"email": "jane@example.com",
			"user_metadata": {"full_name": "Jane Doe"},
			"created_at": "2024-05-01T10:00:00Z",
			"updated_at": "2024-05-01T10:00:00Z"
		}`))
	})

	outcome, err := client.CreateAccount(context.Background(), "jane@example.com", "secret1", map[string]string{"full_name": "Jane Doe"})
	require.NoError(t, err)
	assert.False(t, outcome.HasSession())
	require.NotNil(t, outcome.User)
	assert.Equal(t, "jane@example.com", outcome.User.Email)
	assert.Equal(t, "Jane Doe", outcome.User.FullName())
}

func TestClient_CreateAccountWithSession(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"access_token": "token",
			"token_type": "bearer",
			"expires_in": 3600,
			"expires_at": 1714557600,
			"refresh_token": "refresh",
			"user": {"id": "6f1c2e43-4f0e-4d36-9a3e-2f1f6f4f8a10", "email": "jane@example.com"}
		}`))
	})

	outcome, err := client.CreateAccount(context.Background(), "jane@example.com", "secret1", nil)
	require.NoError(t, err)
	require.True(t, outcome.HasSession())
	assert.Equal(t, "token", outcome.Session.AccessToken)
	assert.Equal(t, "refresh", outcome.Session.RefreshToken)
	assert.Equal(t, int64(1714557600), outcome.Session.ExpiresAt)
	require.NotNil(t, outcome.User)
	assert.Equal(t, "jane@example.com", outcome.User.Email)
	assert.Same(t, outcome.User, outcome.Session.User)
}

func TestClient_CreateAccountError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{
			name:     "gotrue msg",
			status:   http.StatusUnprocessableEntity,
			body:     `{"code": 422, "error_code": "user_already_exists", "msg": "User already registered"}`,
			wantMsg:  "User already registered",
			wantCode: "user_already_exists",
		},
		{
			name:     "oauth style",
			status:   http.StatusBadRequest,
			body:     `{"error": "invalid_grant", "error_description": "Invalid login credentials"}`,
			wantMsg:  "Invalid login credentials",
			wantCode: "invalid_grant",
		},
		{
			name:    "not json",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantMsg: "Request failed: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			outcome, err := client.CreateAccount(context.Background(), "jane@example.com", "secret1", nil)
			require.Error(t, err)
			assert.Nil(t, outcome)

			var perr *authprovider.Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.status, perr.StatusCode)
			assert.Equal(t, tt.wantMsg, authprovider.Describe(err))
			assert.Equal(t, tt.wantCode, perr.Code)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := New(url, "anon-key", WithTimeout(time.Second))
	_, err := client.CreateAccount(context.Background(), "jane@example.com", "secret1", nil)
	require.Error(t, err)

	var perr *authprovider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 0, perr.StatusCode)
	assert.NotNil(t, perr.Err)
	assert.Contains(t, authprovider.Describe(err), "Unable to reach the server")
}

func TestClient_SignIn(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user", "exp": exp.Unix()})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var req passwordGrantRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jane@example.com", req.Email)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  signed,
			"token_type":    "bearer",
			"expires_in":    3600,
			"refresh_token": "refresh",
		})
	})

	session, err := client.SignIn(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, signed, session.AccessToken)
	assert.Equal(t, exp.Unix(), session.ExpiresAt)
	assert.Equal(t, exp.UTC(), session.Expiry())
}
