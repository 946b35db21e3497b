package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_DEBUG", "APP_ALLOCATOR", "APP_CACHE_DIR", "APP_MAX_BODY",
		"APP_ADDR", "APP_WORKERS", "APP_PRODUCTION", "APP_METRICS_PATH",
		"APP_SHUTDOWN_GRACE",
	} {
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadAppliesDocumentedDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "auto", cfg.Allocator)
	assert.Equal(t, "", cfg.CacheDir)
	assert.Equal(t, int64(16*1024*1024), cfg.MaxBody)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 15*time.Second, cfg.ShutdownGrace)
}

func TestLoadHonorsEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_DEBUG", "1")
	t.Setenv("APP_ALLOCATOR", "system")
	t.Setenv("APP_CACHE_DIR", "/var/cache/catzilla")
	t.Setenv("APP_MAX_BODY", "1048576")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "system", cfg.Allocator)
	assert.Equal(t, "/var/cache/catzilla", cfg.CacheDir)
	assert.Equal(t, int64(1048576), cfg.MaxBody)
}
