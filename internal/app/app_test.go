package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/shortlink-analytics/internal/config"
)

func TestJWTSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("configured", func(t *testing.T) {
		cfg := &config.Config{Auth: config.Auth{JWTSecret: "secret"}}

		secret, err := jwtSecret(cfg, logger)

		assert.NoError(t, err)
		assert.Equal(t, "secret", secret)
	})

	t.Run("generated", func(t *testing.T) {
		cfg := &config.Config{}

		first, err := jwtSecret(cfg, logger)
		require.NoError(t, err)
		second, err := jwtSecret(cfg, logger)
		require.NoError(t, err)

		assert.Len(t, first, 64)
		assert.NotEqual(t, first, second)
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		json     bool
		logLevel slog.Level
	}{
		{
			name:     "dev",
			cfg:      &config.Config{Env: config.EnvDev, LogLevel: "debug"},
			json:     false,
			logLevel: slog.LevelDebug,
		},
		{
			name:     "prod",
			cfg:      &config.Config{Env: config.EnvProd, LogLevel: "warn"},
			json:     true,
			logLevel: slog.LevelWarn,
		},
		{
			name:     "unknown level",
			cfg:      &config.Config{Env: config.EnvStage, LogLevel: "loud"},
			json:     true,
			logLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newLogger(tt.cfg)

			assert.Equal(t, tt.json, logger.Options.JSON)
			assert.Equal(t, tt.logLevel, logger.Options.LogLevel)
		})
	}
}
