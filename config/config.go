// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/warp/billing-engine/logger"
)

type Config struct {
	Port   string
	DBPath string

	// Closing-day alert scheduler
	AlertSchedulerEnabled bool
	AlertCheckInterval    time.Duration

	CORSAllowedOrigins []string

	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	interval, err := time.ParseDuration(getEnv("ALERT_CHECK_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_CHECK_INTERVAL: %w", err)
	}
	enabled, err := strconv.ParseBool(getEnv("ALERT_SCHEDULER_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_SCHEDULER_ENABLED: %w", err)
	}

	config := &Config{
		Port:                  getEnv("PORT", "8080"),
		DBPath:                getEnv("DB_PATH", "./billing.db"),
		AlertSchedulerEnabled: enabled,
		AlertCheckInterval:    interval,
		CORSAllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.AlertCheckInterval <= 0 {
		return fmt.Errorf("ALERT_CHECK_INTERVAL must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
