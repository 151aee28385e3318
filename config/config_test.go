package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/schedulr/admin-api/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()
	require.Equal(t, "admin-api", cfg.AppName)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "http://localhost:3000", cfg.WebAppURL)
	require.Equal(t, time.Hour, cfg.AccessTTL)
	require.Equal(t, "db/migrations", cfg.MigrationsDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WEB_APP_URL", "https://app.example.com")
	t.Setenv("DB_NAME", "other")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := config.Load()
	require.Equal(t, "https://app.example.com", cfg.WebAppURL)
	require.Equal(t, "other", cfg.DBName)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL)
	require.True(t, cfg.CookieSecure)
}

func TestPostgresDSN(t *testing.T) {
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_HOST", "h")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "d")

	cfg := config.Load()
	require.Equal(t, "postgres://u:p@h:5433/d?sslmode=disable", cfg.PostgresDSN())
}
