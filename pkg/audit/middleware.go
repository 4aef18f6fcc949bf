// Package audit records one event per request to the auth backend
package audit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/skycast-auth/pkg/ratelimit"
)

// Event is a single audited request
type Event struct {
	Method    string
	URI       string
	Status    int
	ClientIP  string
	UserAgent string
	Duration  time.Duration
	Timestamp time.Time
	Metadata  map[string]interface{}
}

// WithMetadata adds metadata to the event
func (e Event) WithMetadata(key string, value interface{}) Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sink receives audit events
type Sink interface {
	Record(ctx context.Context, event Event)
}

// LogSink writes events to a logger
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Record(ctx context.Context, event Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if event.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.LogAttrs(ctx, level, "audit",
		slog.String("method", event.Method),
		slog.String("uri", event.URI),
		slog.Int("status", event.Status),
		slog.String("ip", event.ClientIP),
		slog.String("user_agent", event.UserAgent),
		slog.Duration("duration", event.Duration),
		slog.Any("metadata", event.Metadata),
	)
}

// Config holds the configuration for the audit middleware
type Config struct {
	// Source is attached to every event, "skycast-auth" when empty
	Source string
	Sink   Sink
}

// Middleware audits HTTP requests
type Middleware struct {
	config Config
	now    func() time.Time
}

// NewMiddleware creates a new audit middleware. A nil Sink logs to
// slog.Default().
func NewMiddleware(config Config) *Middleware {
	if config.Source == "" {
		config.Source = "skycast-auth"
	}
	if config.Sink == nil {
		config.Sink = LogSink{}
	}
	return &Middleware{config: config, now: time.Now}
}

// Handler records an event once the request has been served. Request and
// response bodies are never recorded.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := m.now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		event := Event{
			Method:    r.Method,
			URI:       r.URL.Path,
			Status:    status,
			ClientIP:  ratelimit.ClientIP(r),
			UserAgent: r.UserAgent(),
			Duration:  m.now().Sub(start),
			Timestamp: start,
		}
		m.config.Sink.Record(r.Context(), event.WithMetadata("source", m.config.Source))
	})
}
