package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_base_url":        "http://json.test",
		"storage_backend":     "memory",
		"revalidate_interval": "10s",
		"watch_storage":       false,
		"refresh_window":      "1m",
	})

	t.Run("loads from flags", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, "http://json.test", cfg.APIBaseURL)
		assert.Equal(t, StorageMemory, cfg.StorageBackend)
		assert.Equal(t, 10*time.Second, cfg.RevalidateInterval)
		assert.False(t, cfg.WatchStorage)
		assert.Equal(t, time.Minute, cfg.RefreshWindow)
		assert.Equal(t, "/home", cfg.HomePath, "absent keys keep their value")
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{APIBaseURL: "http://defaults", RevalidateInterval: 42 * time.Second}
		parseJson(cfg, []string{"-a", "http://other"})

		assert.Equal(t, "http://defaults", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.RevalidateInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg, []string{"-c", bad}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg, []string{"-c", filepath.Join(dir, "absent.json")}) })
	})
}
