package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// lookupEnv is a test seam for os.LookupEnv.
var lookupEnv = os.LookupEnv

// loadDotEnv copies variables from path into the process environment without
// overriding ones that are already set. A missing file is not an error.
func loadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// parseEnv overlays cfg with BANKFRONT_* variables. Malformed numeric or
// boolean values are ignored.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}

	str("BANKFRONT_API_BASE_URL", &cfg.APIBaseURL)
	str("BANKFRONT_STORAGE_BACKEND", &cfg.StorageBackend)
	str("BANKFRONT_STORAGE_PATH", &cfg.StoragePath)
	str("BANKFRONT_REDIS_ADDR", &cfg.RedisAddr)
	str("BANKFRONT_REDIS_CHANNEL", &cfg.RedisChannel)
	str("BANKFRONT_KEYRING_SERVICE", &cfg.KeyringService)
	str("BANKFRONT_LOG_LEVEL", &cfg.LogLevel)
	str("BANKFRONT_LOG_FILE", &cfg.LogFile)
	str("BANKFRONT_METRICS_ADDR", &cfg.MetricsAddr)
	dur("BANKFRONT_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("BANKFRONT_REVALIDATE_INTERVAL", &cfg.RevalidateInterval)
	dur("BANKFRONT_REFRESH_WINDOW", &cfg.RefreshWindow)
	dur("BANKFRONT_ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval)

	if v, ok := lookup("BANKFRONT_WATCH_STORAGE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.WatchStorage = b
		}
	}
}
