package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
	t.Setenv("JWT_SECRET_KEY", "secret")
	for _, key := range []string{"DATABASE_URL", "SERVER_PORT", "REDIS_URL", "REDIS_DB", "CACHE_TTL", "LOCK_TTL", "LOG_LEVEL", "TIMEZONE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TIMEZONE", "America/Argentina/Buenos_Aires")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Location.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":       {"JWT_SECRET_KEY": ""},
		"postgres without dsn": {"STORAGE_DRIVER": StorageDriverPostgres},
		"unknown driver":       {"STORAGE_DRIVER": "sqlite"},
		"port out of range":    {"SERVER_PORT": "70000"},
		"port not a number":    {"SERVER_PORT": "http"},
		"bad cache ttl":        {"CACHE_TTL": "soon"},
		"zero lock ttl":        {"LOCK_TTL": "0s"},
		"negative redis db":    {"REDIS_DB": "-1"},
		"bad log level":        {"LOG_LEVEL": "loud"},
		"unknown timezone":     {"TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
