package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	autherrors "github.com/tendant/skycast-auth/pkg/errors"
)

// Config holds rate limiting configuration
type Config struct {
	// Per-IP limit applied to every request
	PerIPEnabled    bool
	PerIPCapacity   int
	PerIPRefillRate float64

	// Tighter per-IP limits for individual routes, keyed by
	// "METHOD /path", e.g. "POST /signup".
	EndpointLimits map[string]EndpointLimit

	// How long to keep idle buckets in memory
	BucketTTL time.Duration
}

// EndpointLimit defines rate limits for a specific endpoint
type EndpointLimit struct {
	Capacity   int
	RefillRate float64
}

// DefaultConfig allows 100 requests a minute per IP and 30 signups an hour
// per IP, close to the hosted service's defaults.
func DefaultConfig() *Config {
	return &Config{
		PerIPEnabled:    true,
		PerIPCapacity:   100,
		PerIPRefillRate: 100.0 / 60.0,
		EndpointLimits: map[string]EndpointLimit{
			"POST /signup": {Capacity: 30, RefillRate: 30.0 / 3600.0},
		},
		BucketTTL: time.Hour,
	}
}

// Middleware is per-IP rate limiting middleware
type Middleware struct {
	config           *Config
	ipLimiter        *RateLimiter
	endpointLimiters map[string]*RateLimiter
	logger           *slog.Logger
}

// NewMiddleware creates rate limiting middleware. A nil config uses
// DefaultConfig.
func NewMiddleware(config *Config, logger *slog.Logger) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Middleware{
		config:           config,
		endpointLimiters: make(map[string]*RateLimiter),
		logger:           logger,
	}
	if config.PerIPEnabled {
		m.ipLimiter = NewRateLimiter(config.PerIPCapacity, config.PerIPRefillRate, config.BucketTTL)
	}
	for endpoint, limit := range config.EndpointLimits {
		m.endpointLimiters[endpoint] = NewRateLimiter(limit.Capacity, limit.RefillRate, config.BucketTTL)
	}
	return m
}

// Handler returns the middleware handler. Endpoint limits match the path
// relative to the router the middleware is installed in.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		if m.ipLimiter != nil && ip != "" && !m.ipLimiter.Allow(ip) {
			m.rateLimitExceeded(w, r, "ip", m.ipLimiter.RetryAfter(ip))
			return
		}

		if limiter, ok := m.endpointLimiters[endpointKey(r)]; ok {
			if !limiter.Allow(ip) {
				m.rateLimitExceeded(w, r, "endpoint", limiter.RetryAfter(ip))
				return
			}
		}

		if m.config.PerIPEnabled {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.config.PerIPCapacity))
		}
		next.ServeHTTP(w, r)
	})
}

// Close stops the limiters' cleanup goroutines
func (m *Middleware) Close() {
	if m.ipLimiter != nil {
		m.ipLimiter.Close()
	}
	for _, l := range m.endpointLimiters {
		l.Close()
	}
}

func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, limitType string, wait time.Duration) {
	m.logger.Warn("Rate limit exceeded",
		"type", limitType,
		"ip", ClientIP(r),
		"path", r.URL.Path,
		"method", r.Method,
	)

	retryAfter := strconv.Itoa(int(math.Ceil(wait.Seconds())))
	if wait <= 0 {
		retryAfter = "1"
	}
	w.Header().Set("Retry-After", retryAfter)
	autherrors.Write(w, r, autherrors.RateLimited(retryAfter))
}

func endpointKey(r *http.Request) string {
	path := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
		path = rctx.RoutePath
	}
	return r.Method + " " + path
}

// ClientIP returns the address of the peer that sent the request. Proxy
// headers are ignored; install RealIP in front when a trusted proxy sets
// them.
func ClientIP(r *http.Request) string {
	// RemoteAddr is "IP:port", or a bare IP once RealIP has rewritten it
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RealIP replaces RemoteAddr with the client address reported by the
// reverse proxy in front of the server: X-Real-IP, else the last
// X-Forwarded-For entry, which is the one the proxy appended. Only use it
// when every request passes through such a proxy; otherwise clients can
// pick their own address.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := forwardedIP(r); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

func forwardedIP(r *http.Request) string {
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if last := strings.TrimSpace(ips[len(ips)-1]); net.ParseIP(last) != nil {
			return last
		}
	}
	return ""
}
