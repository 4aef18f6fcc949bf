package config

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionConfig selects where refresh sessions live
type SessionConfig struct {
	Store              string        `env:"SKYCAST_SESSION_STORE" env-default:"memory"` // memory or redis
	RefreshTokenExpiry time.Duration `env:"SKYCAST_REFRESH_TOKEN_EXPIRY" env-default:"720h"`
}

// RedisConfig holds the Redis connection used by the redis session store
type RedisConfig struct {
	Addr     string `env:"SKYCAST_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"SKYCAST_REDIS_PASSWORD" env-default:""`
	DB       int    `env:"SKYCAST_REDIS_DB" env-default:"0"`
}

// ToRedisOptions converts the config to go-redis options
func (r RedisConfig) ToRedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	}
}
