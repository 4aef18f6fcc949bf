package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tendant/skycast-auth/pkg/authprovider"
)

const (
	DefaultTimeout = 30 * time.Second
	apiPrefix      = "/auth/v1"
)

// Client is a GoTrue API client
type Client struct {
	baseURL    string
	anonKey    string
	redirectTo string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRedirectTo sets the URL the confirmation link sends the user to
func WithRedirectTo(redirectTo string) Option {
	return func(c *Client) {
		c.redirectTo = redirectTo
	}
}

// New creates a client for the project at baseURL, authenticating with the
// project's anonymous key.
func New(baseURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type signupRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data,omitempty"`
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccount registers a new account. When the service requires email
// confirmation the returned outcome carries the user but no session.
func (c *Client) CreateAccount(ctx context.Context, email, password string, metadata map[string]string) (*authprovider.Outcome, error) {
	query := url.Values{}
	if c.redirectTo != "" {
		query.Set("redirect_to", c.redirectTo)
	}

	body, err := c.post(ctx, "/signup", query, signupRequest{Email: email, Password: password, Data: metadata})
	if err != nil {
		return nil, err
	}

	outcome, err := decodeSignup(body)
	if err != nil {
		return nil, authprovider.Wrap(err, "Unexpected response from the server")
	}
	c.logger.Info("Account created", "email", email, "has_session", outcome.HasSession())
	return outcome, nil
}

// SignIn exchanges an email and password for a session
func (c *Client) SignIn(ctx context.Context, email, password string) (*authprovider.Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body, err := c.post(ctx, "/token", query, passwordGrantRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var session authprovider.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, authprovider.Wrap(err, "Unexpected response from the server")
	}
	if session.AccessToken == "" {
		return nil, authprovider.NewError("Unexpected response from the server")
	}
	fillExpiry(&session)
	c.logger.Info("Signed in", "email", email)
	return &session, nil
}

func (c *Client) post(ctx context.Context, path string, query url.Values, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Auth request failed", "path", path, "error", err)
		return nil, authprovider.Wrap(err, "Unable to reach the server. Check your connection and try again.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, authprovider.Wrap(err, "Unable to read the server response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := decodeError(resp.StatusCode, body)
		c.logger.Warn("Auth request rejected", "path", path, "status", resp.StatusCode, "code", perr.Code, "message", perr.Message)
		return nil, perr
	}
	return body, nil
}
