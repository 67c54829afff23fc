package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRefusesWithoutMailSecrets(t *testing.T) {
	// Neither SMTP_USER nor SMTP_PASS is set.
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("SMTP_USER", "team@example.com")
	t.Setenv("SMTP_PASS", "app-password")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPServer.Address)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "admin@local", cfg.Admin.Email)
	assert.Equal(t, 30*time.Minute, cfg.Tokens.VerificationTokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout)
	assert.Empty(t, cfg.BaseURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SMTP_USER", "team@example.com")
	t.Setenv("SMTP_PASS", "app-password")
	t.Setenv("BASE_URL", "https://team.example.com")
	t.Setenv("ADMIN_DEFAULT_USER", "boss")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://team.example.com", cfg.BaseURL)
	assert.Equal(t, "boss", cfg.Admin.Username)
}
