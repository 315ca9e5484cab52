package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PATH", "ALERT_CHECK_INTERVAL", "ALERT_SCHEDULER_ENABLED", "CORS_ALLOWED_ORIGINS", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./billing.db", cfg.DBPath)
	assert.True(t, cfg.AlertSchedulerEnabled)
	assert.Equal(t, time.Hour, cfg.AlertCheckInterval)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "console", cfg.GetLoggerConfig().Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALERT_CHECK_INTERVAL", "15m")
	t.Setenv("ALERT_SCHEDULER_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example ")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AlertCheckInterval)
	assert.False(t, cfg.AlertSchedulerEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"port":     {"PORT", "http"},
		"interval": {"ALERT_CHECK_INTERVAL", "soon"},
		"negative": {"ALERT_CHECK_INTERVAL", "-1m"},
		"enabled":  {"ALERT_SCHEDULER_ENABLED", "maybe"},
		"format":   {"LOG_FORMAT", "xml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
