package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "deptbook.db", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.TxMaxAttempts)
	assert.Equal(t, 25*time.Millisecond, cfg.TxRetryBackoff)
	assert.Equal(t, 256, cfg.AuditBuffer)
	assert.Equal(t, 30*time.Second, cfg.StatusRefreshInterval)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
	assert.Equal(t, 9, cfg.TimelineStartHour)
	assert.Equal(t, 23, cfg.TimelineEndHour)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("BOOKING_TX_MAX_ATTEMPTS", "5")
	t.Setenv("BOOKING_TX_RETRY_BACKOFF", "100ms")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 5, cfg.TxMaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.TxRetryBackoff)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":       {"BOOKING_TX_RETRY_BACKOFF": "soon"},
		"bad int":            {"AUDIT_BUFFER": "many"},
		"zero attempts":      {"BOOKING_TX_MAX_ATTEMPTS": "0"},
		"inverted timeline":  {"TIMELINE_START_HOUR": "20", "TIMELINE_END_HOUR": "8"},
		"unknown timezone":   {"APP_TIMEZONE": "Mars/Olympus"},
		"default prod jwt":   {"APP_ENV": "production"},
		"zero status period": {"STATUS_REFRESH_INTERVAL": "0s"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_ProdWithSecret(t *testing.T) {
	t.Setenv("APP_ENV", "release")
	t.Setenv("JWT_SECRET", "a-real-secret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
