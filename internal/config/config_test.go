package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("RECEIPT_PREFIX", "")
	t.Setenv("STATE_SYNC_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "America/Bogota", cfg.Timezone)
	assert.Equal(t, "OG", cfg.ReceiptPrefix)
	assert.Equal(t, "0 0 * * *", cfg.StateSyncCron)
	assert.True(t, cfg.StateSyncEnabled)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "America/Bogota", cfg.Location().String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "3000")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("STATE_SYNC_ENABLED", "false")
	t.Setenv("LOGIN_RATE_BURST", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.StateSyncEnabled)
	assert.Equal(t, 10, cfg.LoginRateBurst)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}
