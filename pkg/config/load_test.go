package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSucceedsWithoutJwtSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.Jwt.Secret)

	assert.Equal(t, 3, cfg.Transfer.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.Transfer.AttemptTimeout)
	assert.Equal(t, 0.01, cfg.Fee.CommissionPercentage)
	assert.Equal(t, "log", cfg.Notifier.Backend)
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("TRANSFER_MAX_ATTEMPTS", "5")
	t.Setenv("NOTIFIER_BACKEND", "kafka")

	cfg, err := Load(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Auth.Jwt.Secret)
	assert.Equal(t, 5, cfg.Transfer.MaxAttempts)
	assert.Equal(t, "kafka", cfg.Notifier.Backend)
}
