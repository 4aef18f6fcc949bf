// Package router mounts the dev auth backend on a chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/skycast-auth/pkg/audit"
	"github.com/tendant/skycast-auth/pkg/authserver"
	autherrors "github.com/tendant/skycast-auth/pkg/errors"
	"github.com/tendant/skycast-auth/pkg/ratelimit"
)

const DefaultPrefix = "/auth/v1"

// Config holds everything needed to mount the auth routes
type Config struct {
	// Prefix the routes are mounted under, DefaultPrefix when empty
	Prefix string

	AuthHandle authserver.Handle

	// Audit records every request under Prefix, including rate limited
	// ones. Optional.
	Audit *audit.Middleware

	// RateLimiter guards every route under Prefix. Optional.
	RateLimiter *ratelimit.Middleware

	// TrustProxyHeaders takes client addresses from proxy headers for
	// rate limiting, audit and sessions
	TrustProxyHeaders bool
}

type healthResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SetupRoutes mounts the auth routes and a health check under cfg.Prefix.
// Unknown paths under the prefix get a JSON not_found error.
func SetupRoutes(router chi.Router, cfg Config) {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	router.Route(prefix, func(r chi.Router) {
		if cfg.TrustProxyHeaders {
			r.Use(ratelimit.RealIP)
		}
		if cfg.Audit != nil {
			r.Use(cfg.Audit.Handler)
		}
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, healthResponse{
				Name:        "skycast-auth",
				Description: "Local GoTrue-compatible auth backend for Skycast",
			})
		})
		authserver.Routes(r, cfg.AuthHandle)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			autherrors.Write(w, r, autherrors.New(autherrors.ErrCodeNotFound, "Not Found"))
		})
	})
}
