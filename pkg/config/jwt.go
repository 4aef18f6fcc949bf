package config

import "time"

// JwtConfig configures access tokens minted by the dev backend
type JwtConfig struct {
	Secret            string        `env:"SKYCAST_JWT_SECRET" env-default:"super-secret-jwt-token-with-at-least-32-characters"`
	Issuer            string        `env:"SKYCAST_JWT_ISSUER" env-default:"http://localhost:9999/auth/v1"`
	AccessTokenExpiry time.Duration `env:"SKYCAST_JWT_EXPIRY" env-default:"1h"`
}
