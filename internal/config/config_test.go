package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/membership_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, 5, cfg.WorkerCount)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresJWTSecretInProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/membership_test")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/membership_test")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "72")
	t.Setenv("ALLOWED_ORIGINS", "https://ycmovement.org,https://admin.ycmovement.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 72, cfg.JWTExpirationHours)
	assert.Equal(t, []string{"https://ycmovement.org", "https://admin.ycmovement.org"}, cfg.AllowedOrigins)
}
