package config

import (
	"time"

	"github.com/tendant/skycast-auth/pkg/ratelimit"
)

// RateLimitConfig contains rate limiting settings for the dev backend
type RateLimitConfig struct {
	Enabled bool `env:"SKYCAST_RATE_LIMIT_ENABLED" env-default:"true"`

	// Requests per minute per IP across all endpoints
	PerIPPerMinute int `env:"SKYCAST_RATE_LIMIT_PER_IP" env-default:"100"`

	// Signups per hour per IP
	SignupsPerHour int `env:"SKYCAST_RATE_LIMIT_SIGNUPS" env-default:"30"`

	// Password grants per 5 minutes per IP
	TokenPer5Minutes int `env:"SKYCAST_RATE_LIMIT_TOKEN" env-default:"30"`

	BucketTTL time.Duration `env:"SKYCAST_RATE_LIMIT_BUCKET_TTL" env-default:"1h"`

	// Take client addresses from X-Real-IP / X-Forwarded-For. Only enable
	// behind a reverse proxy that sets them.
	TrustProxyHeaders bool `env:"SKYCAST_RATE_LIMIT_TRUST_PROXY" env-default:"false"`
}

// ToRateLimitConfig converts the config to a ratelimit.Config. It returns
// nil when rate limiting is disabled.
func (c RateLimitConfig) ToRateLimitConfig() *ratelimit.Config {
	if !c.Enabled {
		return nil
	}
	cfg := &ratelimit.Config{
		PerIPEnabled:    c.PerIPPerMinute > 0,
		PerIPCapacity:   c.PerIPPerMinute,
		PerIPRefillRate: float64(c.PerIPPerMinute) / 60.0,
		EndpointLimits:  map[string]ratelimit.EndpointLimit{},
		BucketTTL:       c.BucketTTL,
	}
	if c.SignupsPerHour > 0 {
		cfg.EndpointLimits["POST /signup"] = ratelimit.EndpointLimit{
			Capacity:   c.SignupsPerHour,
			RefillRate: float64(c.SignupsPerHour) / 3600.0,
		}
	}
	if c.TokenPer5Minutes > 0 {
		cfg.EndpointLimits["POST /token"] = ratelimit.EndpointLimit{
			Capacity:   c.TokenPer5Minutes,
			RefillRate: float64(c.TokenPer5Minutes) / 300.0,
		}
	}
	return cfg
}
