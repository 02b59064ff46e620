package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.Addr())
	assert.Equal(t, "http://127.0.0.1:9101/mcp", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 10*time.Minute, cfg.OAuth.CodeTTL)
	assert.Equal(t, time.Hour, cfg.OAuth.TokenTTL)
	assert.Equal(t, "default_user", cfg.OAuth.Subject)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	content := `
host: 0.0.0.0
port: 8088
issuer: https://gw.example
backend:
  url: http://backend:9000/mcp
  timeout: 5s
storage:
  driver: sqlite
  sqlite_path: /tmp/gw.db
oauth:
  token_ttl: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8088", cfg.Addr())
	assert.Equal(t, "https://gw.example", cfg.Issuer)
	assert.Equal(t, "http://backend:9000/mcp", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/gw.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 30*time.Minute, cfg.OAuth.TokenTTL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10*time.Minute, cfg.OAuth.CodeTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OAUTH_GATEWAY_PORT", "9999")
	t.Setenv("OAUTH_GATEWAY_STORAGE_DRIVER", "redis")
	t.Setenv("OAUTH_GATEWAY_STORAGE_REDIS_ADDR", "redis.internal:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "redis.internal:6379", cfg.Storage.RedisAddr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("OAUTH_GATEWAY_STORAGE_DRIVER", "etcd")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage driver")
	})

	t.Run("relative backend url", func(t *testing.T) {
		t.Setenv("OAUTH_GATEWAY_BACKEND_URL", "/mcp")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be absolute")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
