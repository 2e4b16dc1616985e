package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "APP_MODE", "LOG_MODE", "SHUTDOWN_TIMEOUT_SEC",
		"REDIS_ENABLED", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"RESULTS_CACHE_TTL_SEC", "CACHE_TIMEOUT_MS",
	} {
		// Setenv restores the previous value when the test ends
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "debug", cfg.AppMode)
	assert.Equal(t, "development", cfg.LogMode)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.Empty(t, cfg.RedisPassword)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 60*time.Second, cfg.ResultsCacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.CacheTimeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RESULTS_CACHE_TTL_SEC", "5")
	t.Setenv("CACHE_TIMEOUT_MS", "40")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.AppPort)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.ResultsCacheTTL)
	assert.Equal(t, 40*time.Millisecond, cfg.CacheTimeout)
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("POLLAPP_TEST_INT", "many")

	assert.Equal(t, 7, getEnvAsInt("POLLAPP_TEST_INT", 7))
	assert.True(t, getEnvAsBool("POLLAPP_TEST_INT", true))
}
