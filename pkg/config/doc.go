// Package config holds the environment-driven configuration sections shared
// by the skycast-auth commands.
//
// Every section is a plain struct with cleanenv tags, so a command embeds the
// sections it needs and reads them in one call:
//
//	type Config struct {
//		Provider config.ProviderConfig
//		Messages config.MessagesConfig
//	}
//
//	var cfg Config
//	if err := cleanenv.ReadEnv(&cfg); err != nil {
//		slog.Error("Failed to read configuration", "error", err)
//		os.Exit(1)
//	}
//
// Sections convert themselves into the option types of the packages they
// configure (ToSMTPConfig, ToDbConfig, ToRedisOptions, ToRateLimitConfig,
// ToMessages).
package config
