// Command authdev runs a local GoTrue-compatible auth backend so the signup
// and login clients can be exercised without the hosted service.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/skycast-auth/pkg/audit"
	"github.com/tendant/skycast-auth/pkg/authserver"
	"github.com/tendant/skycast-auth/pkg/config"
	"github.com/tendant/skycast-auth/pkg/emailverification"
	"github.com/tendant/skycast-auth/pkg/notification"
	"github.com/tendant/skycast-auth/pkg/ratelimit"
	"github.com/tendant/skycast-auth/pkg/router"
	"github.com/tendant/skycast-auth/pkg/sessions"
	"github.com/tendant/skycast-auth/pkg/tokengenerator"
)

type Config struct {
	AppConfig app.AppConfig
	Signup    config.SignupConfig
	Database  config.DatabaseConfig
	Email     config.EmailConfig
	Jwt       config.JwtConfig
	Session   config.SessionConfig
	Redis     config.RedisConfig
	RateLimit config.RateLimitConfig
}

const cleanupInterval = time.Hour

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	config.LoadEnvFile()

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	accounts, tokenRepo, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "persistence", cfg.Signup.Persistence, "error", err)
		os.Exit(1)
	}

	sessionRepo, err := openSessionStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open session store", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}

	notificationManager, err := newNotificationManager(cfg.Email)
	if err != nil {
		slog.Error("Failed to initialize notification manager", "error", err)
		os.Exit(1)
	}

	verification := emailverification.NewEmailVerificationService(
		tokenRepo,
		cfg.Signup.VerifyURL(),
		emailverification.WithTokenExpiry(cfg.Signup.ConfirmationExpiry),
		emailverification.WithSender(notificationManager),
	)

	tokens := tokengenerator.NewJwtTokenGenerator(cfg.Jwt.Secret, cfg.Jwt.Issuer, cfg.Jwt.AccessTokenExpiry)
	sessionService := sessions.NewService(sessionRepo,
		sessions.WithRefreshTokenExpiry(cfg.Session.RefreshTokenExpiry),
	)

	authService := authserver.NewService(accounts, tokens, sessionService,
		authserver.WithEmailVerification(verification),
		authserver.WithAutoconfirm(cfg.Signup.Autoconfirm),
		authserver.WithSignupDisabled(cfg.Signup.Disabled),
		authserver.WithMinPasswordLength(cfg.Signup.MinPasswordLength),
		authserver.WithRedirectURLs(cfg.Signup.RedirectURLs()...),
	)

	var limiter *ratelimit.Middleware
	if rl := cfg.RateLimit.ToRateLimitConfig(); rl != nil {
		limiter = ratelimit.NewMiddleware(rl, logger)
		defer limiter.Close()
	}

	go cleanupExpiredTokens(ctx, verification)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	router.SetupRoutes(server.R, router.Config{
		Prefix:      cfg.Signup.Prefix,
		AuthHandle:  authserver.NewHandle(authService, tokens.JWTAuth()),
		Audit:       audit.NewMiddleware(audit.Config{Sink: audit.LogSink{Logger: logger}}),
		RateLimiter: limiter,

		TrustProxyHeaders: cfg.RateLimit.TrustProxyHeaders,
	})

	slog.Info("Auth backend ready",
		"prefix", cfg.Signup.Prefix,
		"persistence", cfg.Signup.Persistence,
		"sessions", cfg.Session.Store,
		"autoconfirm", cfg.Signup.Autoconfirm,
		"email", cfg.Email.Enabled,
	)
	server.Run()
}

func openStorage(ctx context.Context, cfg Config) (authserver.AccountRepository, emailverification.Repository, error) {
	switch cfg.Signup.Persistence {
	case "memory":
		return authserver.NewInMemoryAccountRepository(), emailverification.NewInMemoryRepository(), nil

	case "sqlite":
		db, err := sql.Open("sqlite", "file:"+cfg.Signup.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		accounts, err := authserver.NewSQLiteAccountRepository(db)
		if err != nil {
			return nil, nil, err
		}
		// Confirmation tokens are short-lived and stay in memory
		return accounts, emailverification.NewInMemoryRepository(), nil

	case "postgres":
		dbConfig, err := cfg.Database.ToDbConfig()
		if err != nil {
			return nil, nil, err
		}
		pool, err := dbutils.NewDbPool(ctx, dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			return nil, nil, err
		}
		for _, schema := range []string{authserver.Schema, emailverification.Schema} {
			if _, err := pool.Exec(ctx, schema); err != nil {
				return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return authserver.NewPostgresAccountRepository(pool), emailverification.NewPostgresRepository(pool), nil
	}
	return nil, nil, fmt.Errorf("unknown persistence %q", cfg.Signup.Persistence)
}

func openSessionStore(ctx context.Context, cfg Config) (sessions.Repository, error) {
	switch cfg.Session.Store {
	case "memory":
		return sessions.NewInMemoryRepository(), nil
	case "redis":
		client := redis.NewClient(cfg.Redis.ToRedisOptions())
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		return sessions.NewRedisRepository(client), nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
}

// newNotificationManager sends confirmation mail over SMTP when email is
// enabled and logs it otherwise
func newNotificationManager(cfg config.EmailConfig) (*notification.NotificationManager, error) {
	if cfg.Enabled {
		return notification.NewNotificationManager(
			notification.WithSMTP(cfg.ToSMTPConfig()),
			notification.WithSignupConfirmationTemplate(notification.EmailSystem),
		)
	}
	slog.Warn("Email disabled, confirmation links are written to the log")
	return notification.NewNotificationManager(
		notification.WithNotifier(notification.LogSystem, &notification.LogNotifier{}),
		notification.WithSignupConfirmationTemplate(notification.LogSystem),
	)
}

func cleanupExpiredTokens(ctx context.Context, verification *emailverification.EmailVerificationService) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := verification.CleanupExpiredTokens(ctx); err != nil {
				slog.Error("Failed to clean up confirmation tokens", "error", err)
			}
		}
	}
}
