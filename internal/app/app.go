// Package app wires the configured components together and runs the HTTP server.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shortlink-analytics/internal/adapter/cache"
	"github.com/vadimbarashkov/shortlink-analytics/internal/adapter/oauth"
	"github.com/vadimbarashkov/shortlink-analytics/internal/adapter/session"
	"github.com/vadimbarashkov/shortlink-analytics/internal/adapter/useragent"
	"github.com/vadimbarashkov/shortlink-analytics/internal/analytics"
	"github.com/vadimbarashkov/shortlink-analytics/internal/config"
	"github.com/vadimbarashkov/shortlink-analytics/internal/usecase"
	"github.com/vadimbarashkov/shortlink-analytics/pkg/postgres"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/shortlink-analytics/internal/adapter/delivery/http"
	repository "github.com/vadimbarashkov/shortlink-analytics/internal/adapter/repository/postgres"
)

func newLogger(cfg *config.Config) *httplog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return httplog.NewLogger("url-shortener", httplog.Options{
		JSON:            cfg.Env != config.EnvDev,
		Concise:         cfg.Env == config.EnvDev,
		LogLevel:        level,
		RequestHeaders:  cfg.Env == config.EnvDev,
		QuietDownRoutes: []string{"/api/ping", "/metrics"},
		Tags: map[string]string{
			"env": cfg.Env,
		},
	})
}

// jwtSecret returns the configured secret, or a random one in dev where
// sessions do not need to survive restarts.
func jwtSecret(cfg *config.Config, logger *slog.Logger) (string, error) {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret, nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	logger.Warn("auth.jwt_secret is empty, using a random secret")

	return hex.EncodeToString(b), nil
}

// newRouter builds the use cases over db and serves them over HTTP.
// A nil redisClient disables the link cache.
func newRouter(cfg *config.Config, logger *httplog.Logger, db *sqlx.DB, redisClient *redis.Client, sessions *session.Manager) (*chi.Mux, error) {
	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics timezone: %w", err)
	}

	urlRepo := repository.NewURLRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	urlOpts := []usecase.URLOption{usecase.WithLogger(logger.Logger)}
	if redisClient != nil {
		urlOpts = append(urlOpts, usecase.WithLinkCache(cache.NewLinkCache(redisClient, cfg.Redis.TTL)))
	}

	urlUseCase := usecase.NewURLUseCase(cfg.ShortCodeLength, urlRepo, useragent.NewParser(), urlOpts...)
	analyticsUseCase := usecase.NewAnalyticsUseCase(analytics.New(loc), cfg.Analytics.MaxVisits, urlRepo, accountRepo)
	accountUseCase := usecase.NewAccountUseCase(accountRepo)

	provider := oauth.NewGoogleProvider(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.GoogleRedirectURL)

	rateLimitRequests := cfg.RateLimit.Requests
	if cfg.RateLimit.Disabled {
		rateLimitRequests = 0
	}

	return delivery.NewRouter(logger, delivery.Options{
		BaseURL:           cfg.BaseURL,
		RateLimitRequests: rateLimitRequests,
		RateLimitWindow:   cfg.RateLimit.Window,
		SecureCookies:     cfg.Env != config.EnvDev,
		LoginRedirectURL:  cfg.Auth.SuccessRedirectURL,
	}, delivery.UseCases{
		URL:       urlUseCase,
		Analytics: analyticsUseCase,
		Account:   accountUseCase,
	}, sessions, provider), nil
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := newLogger(cfg)

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	version, err := postgres.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}
	logger.Info("database migrated", slog.Uint64("version", uint64(version)))

	secret, err := jwtSecret(cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: failed to generate jwt secret: %w", op, err)
	}

	sessions, err := session.NewManager(secret, cfg.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("%s: failed to create session manager: %w", op, err)
	}

	var redisClient *redis.Client

	if cfg.Redis.Addr != "" {
		redisClient, err = cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}
		defer redisClient.Close()
	} else {
		logger.Info("redis.addr is empty, link cache disabled")
	}

	router, err := newRouter(cfg, logger, db, redisClient, sessions)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
