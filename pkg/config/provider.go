package config

import "time"

// ProviderConfig points the client commands at a GoTrue-compatible service
type ProviderConfig struct {
	URL        string        `env:"SKYCAST_AUTH_URL" env-default:"http://localhost:9999"`
	AnonKey    string        `env:"SKYCAST_AUTH_ANON_KEY" env-default:"local-anon-key"`
	Timeout    time.Duration `env:"SKYCAST_AUTH_TIMEOUT" env-default:"30s"`
	RedirectTo string        `env:"SKYCAST_AUTH_REDIRECT_TO" env-default:""`
}
