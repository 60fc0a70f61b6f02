package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "PORT", "PROVIDER_TIMEOUT", "DB_DRIVER", "DB_DSN",
		"ALERT_THRESHOLD_TEMP", "ALERT_CONSECUTIVE_COUNT", "ALERT_WINDOW_HOURS",
		"TRACKED_CITIES", "NOTIFY_URLS", "ALERT_CHECK_INTERVAL",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.InDelta(t, 30.0, cfg.AlertThreshold, 1e-9)
	assert.Equal(t, 3, cfg.AlertConsecutive)
	assert.Equal(t, 24, cfg.AlertWindowHours)
	assert.Empty(t, cfg.TrackedCities)
	assert.Empty(t, cfg.NotifyURLs)
	assert.Zero(t, cfg.AlertCheckInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("ALERT_THRESHOLD_TEMP", "35.5")
	t.Setenv("ALERT_CONSECUTIVE_COUNT", "2")
	t.Setenv("TRACKED_CITIES", "Paris, Tokyo ,,New York")
	t.Setenv("NOTIFY_URLS", "generic://example.com/hook")
	t.Setenv("PROVIDER_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.InDelta(t, 35.5, cfg.AlertThreshold, 1e-9)
	assert.Equal(t, 2, cfg.AlertConsecutive)
	assert.Equal(t, []string{"Paris", "Tokyo", "New York"}, cfg.TrackedCities)
	assert.Equal(t, []string{"generic://example.com/hook"}, cfg.NotifyURLs)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"app env", "APP_ENV", "staging"},
		{"log level", "LOG_LEVEL", "verbose"},
		{"db driver", "DB_DRIVER", "postgres"},
		{"threshold", "ALERT_THRESHOLD_TEMP", "hot"},
		{"timeout", "PROVIDER_TIMEOUT", "soon"},
		{"consecutive", "ALERT_CONSECUTIVE_COUNT", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MySQLRequiresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_DSN", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}
