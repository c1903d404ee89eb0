package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", c.APIBaseURL)
	assert.Equal(t, StorageSQLite, c.StorageBackend)
	assert.Equal(t, 5*time.Minute, c.RevalidateInterval)
	assert.Equal(t, 2*time.Minute, c.RefreshWindow)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "/home", c.HomePath)
	assert.Equal(t, "/login", c.LoginPath)
	assert.Equal(t, "/register", c.RegisterPath)
	assert.True(t, c.WatchStorage)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	orig := lookupEnv
	lookupEnv = func(string) (string, bool) { return "", false }
	t.Cleanup(func() { lookupEnv = orig })

	cfg := LoadConfig([]string{"shell", "-a", "http://bank.test", "-s", "memory"})

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://bank.test", cfg.APIBaseURL)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, 5*time.Minute, cfg.RevalidateInterval)
}

func TestParseEnv(t *testing.T) {
	env := map[string]string{
		"BANKFRONT_API_BASE_URL":        "http://env.test",
		"BANKFRONT_STORAGE_BACKEND":     "redis",
		"BANKFRONT_REVALIDATE_INTERVAL": "90s",
		"BANKFRONT_REQUEST_TIMEOUT":     "not-a-duration",
		"BANKFRONT_WATCH_STORAGE":       "false",
		"BANKFRONT_REFRESH_WINDOW":      "45s",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var c Config
	c.LoadDefaults()
	parseEnv(&c, lookup)

	assert.Equal(t, "http://env.test", c.APIBaseURL)
	assert.Equal(t, StorageRedis, c.StorageBackend)
	assert.Equal(t, 90*time.Second, c.RevalidateInterval)
	assert.Equal(t, 30*time.Second, c.RequestTimeout, "malformed value keeps the default")
	assert.False(t, c.WatchStorage)
	assert.Equal(t, 45*time.Second, c.RefreshWindow)
}
