package authserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/skycast-auth/pkg/authclient"
	"github.com/tendant/skycast-auth/pkg/authprovider"
	autherrors "github.com/tendant/skycast-auth/pkg/errors"
)

func newTestServer(t *testing.T, env *testEnv) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/auth/v1", Handler(NewHandle(env.service, env.tokens.JWTAuth())))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// noRedirect returns a client that reports redirects instead of following
// them
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func decodeErrorBody(t *testing.T, resp *http.Response) autherrors.Response {
	t.Helper()
	var body autherrors.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func bearerRequest(t *testing.T, method, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHandle_ConfirmationFlow(t *testing.T) {
	env := newTestEnv()
	srv := newTestServer(t, env)
	client := authclient.New(srv.URL, "anon-key", authclient.WithRedirectTo("skycast://login"))
	ctx := context.Background()

	outcome, err := client.CreateAccount(ctx, "jane@example.com", "secret1", map[string]string{"full_name": "Jane Doe"})
	require.NoError(t, err)
	assert.False(t, outcome.HasSession())
	assert.Equal(t, "Jane Doe", outcome.User.FullName())

	_, err = client.SignIn(ctx, "jane@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "email_not_confirmed", authprovider.CodeOf(err))
	assert.Equal(t, "Email not confirmed", authprovider.Describe(err))

	resp, err := noRedirect().Get(srv.URL + "/auth/v1/verify?type=signup&token=" + env.sender.lastToken(t))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "skycast://login", resp.Header.Get("Location"))

	session, err := client.SignIn(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, session.ExpiresAt)
	require.NotNil(t, session.User)
	assert.Equal(t, "jane@example.com", session.User.Email)

	resp = bearerRequest(t, http.MethodGet, srv.URL+"/auth/v1/user", session.AccessToken)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user authprovider.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, session.User.ID, user.ID)
	assert.NotNil(t, user.EmailConfirmedAt)
}

func TestHandle_AutoconfirmAndLogout(t *testing.T) {
	env := newTestEnv(WithAutoconfirm(true))
	srv := newTestServer(t, env)
	client := authclient.New(srv.URL, "anon-key")

	outcome, err := client.CreateAccount(context.Background(), "jane@example.com", "secret1", nil)
	require.NoError(t, err)
	require.True(t, outcome.HasSession())

	resp := bearerRequest(t, http.MethodPost, srv.URL+"/auth/v1/logout", outcome.Session.AccessToken)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	body := strings.NewReader(`{"refresh_token":"` + outcome.Session.RefreshToken + `"}`)
	resp, err = http.Post(srv.URL+"/auth/v1/token?grant_type=refresh_token", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, autherrors.ErrCodeRefreshTokenNotFound, decodeErrorBody(t, resp).ErrorCode)
}

func TestHandle_RefreshTokenGrant(t *testing.T) {
	env := newTestEnv(WithAutoconfirm(true))
	srv := newTestServer(t, env)
	client := authclient.New(srv.URL, "anon-key")

	outcome, err := client.CreateAccount(context.Background(), "jane@example.com", "secret1", nil)
	require.NoError(t, err)

	body := strings.NewReader(`{"refresh_token":"` + outcome.Session.RefreshToken + `"}`)
	resp, err := http.Post(srv.URL+"/auth/v1/token?grant_type=refresh_token", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session authprovider.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEqual(t, outcome.Session.RefreshToken, session.RefreshToken)
}

func TestHandle_Errors(t *testing.T) {
	env := newTestEnv()
	srv := newTestServer(t, env)
	client := authclient.New(srv.URL, "anon-key")
	ctx := context.Background()

	_, err := client.CreateAccount(ctx, "jane@example.com", "12345", nil)
	require.Error(t, err)
	assert.Equal(t, "weak_password", authprovider.CodeOf(err))
	assert.Equal(t, "Password should be at least 6 characters.", authprovider.Describe(err))

	_, err = client.CreateAccount(ctx, "jane@example.com", "secret1", nil)
	require.NoError(t, err)
	_, _, err = env.service.Verify(ctx, env.sender.lastToken(t))
	require.NoError(t, err)
	_, err = client.CreateAccount(ctx, "jane@example.com", "secret1", nil)
	assert.Equal(t, "User already registered", authprovider.Describe(err))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		status int
		code   autherrors.ErrorCode
	}{
		{"bad json", http.MethodPost, "/auth/v1/signup", `{`, "", http.StatusBadRequest, autherrors.ErrCodeBadJSON},
		{"unsupported grant", http.MethodPost, "/auth/v1/token?grant_type=magic", `{}`, "", http.StatusBadRequest, autherrors.ErrCodeUnsupportedGrant},
		{"verify without type", http.MethodGet, "/auth/v1/verify?token=abc", "", "", http.StatusBadRequest, autherrors.ErrCodeValidationFailed},
		{"verify unknown token", http.MethodGet, "/auth/v1/verify?type=signup&token=abc", "", "", http.StatusForbidden, autherrors.ErrCodeOTPExpired},
		{"user without token", http.MethodGet, "/auth/v1/user", "", "", http.StatusUnauthorized, autherrors.ErrCodeNoAuthorization},
		{"user with bad token", http.MethodGet, "/auth/v1/user", "", "not-a-jwt", http.StatusUnauthorized, autherrors.ErrCodeBadJWT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeErrorBody(t, resp)
			assert.Equal(t, tt.code, body.ErrorCode)
			assert.Equal(t, tt.status, body.Code)
		})
	}
}

func TestHandle_VerifyRedirectAllowList(t *testing.T) {
	env := newTestEnv()
	srv := newTestServer(t, env)
	ctx := context.Background()

	verify := func(t *testing.T, token, redirectTo string) *http.Response {
		t.Helper()
		query := url.Values{"type": {"signup"}, "token": {token}}
		if redirectTo != "" {
			query.Set("redirect_to", redirectTo)
		}
		resp, err := noRedirect().Get(srv.URL + "/auth/v1/verify?" + query.Encode())
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("foreign override is ignored", func(t *testing.T) {
		client := authclient.New(srv.URL, "anon-key", authclient.WithRedirectTo("skycast://login"))
		_, err := client.CreateAccount(ctx, "jane@example.com", "secret1", nil)
		require.NoError(t, err)

		resp := verify(t, env.sender.lastToken(t), "https://evil.example.net/phish")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "skycast://login", resp.Header.Get("Location"))
	})

	t.Run("allowed override wins", func(t *testing.T) {
		client := authclient.New(srv.URL, "anon-key", authclient.WithRedirectTo("skycast://login"))
		_, err := client.CreateAccount(ctx, "john@example.com", "secret1", nil)
		require.NoError(t, err)

		resp := verify(t, env.sender.lastToken(t), "http://localhost:9999/welcome")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "http://localhost:9999/welcome", resp.Header.Get("Location"))
	})

	t.Run("foreign signup redirect is dropped", func(t *testing.T) {
		client := authclient.New(srv.URL, "anon-key", authclient.WithRedirectTo("https://evil.example.net/phish"))
		_, err := client.CreateAccount(ctx, "mallory@example.com", "secret1", nil)
		require.NoError(t, err)

		env.sender.mu.Lock()
		link := env.sender.sent[len(env.sender.sent)-1].Data["ConfirmationLink"]
		env.sender.mu.Unlock()
		assert.NotContains(t, link, "evil.example.net")

		resp := verify(t, env.sender.lastToken(t), "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Location"))

		var user authprovider.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
		assert.Equal(t, "mallory@example.com", user.Email)
		assert.NotNil(t, user.EmailConfirmedAt)
	})
}
