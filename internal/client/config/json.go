package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/bankfront/internal/flagx"
	"github.com/dmitrijs2005/bankfront/internal/timex"
)

// JsonConfig is a DTO used only for unmarshalling the JSON config file.
// Pointer fields distinguish "absent" from "zero" so a partial file only
// overrides what it names.
type JsonConfig struct {
	APIBaseURL          *string         `json:"api_base_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	StorageBackend      *string         `json:"storage_backend"`
	StoragePath         *string         `json:"storage_path"`
	RedisAddr           *string         `json:"redis_addr"`
	RedisChannel        *string         `json:"redis_channel"`
	KeyringService      *string         `json:"keyring_service"`
	WatchStorage        *bool           `json:"watch_storage"`
	RevalidateInterval  *timex.Duration `json:"revalidate_interval"`
	RefreshWindow       *timex.Duration `json:"refresh_window"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	HomePath            *string         `json:"home_path"`
	LoginPath           *string         `json:"login_path"`
	RegisterPath        *string         `json:"register_path"`
	LogLevel            *string         `json:"log_level"`
	LogFile             *string         `json:"log_file"`
	MetricsAddr         *string         `json:"metrics_addr"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// Without such a flag it does nothing. Read or decode errors panic; the
// caller decides whether to recover.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.StorageBackend, jc.StorageBackend)
	setString(&cfg.StoragePath, jc.StoragePath)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisChannel, jc.RedisChannel)
	setString(&cfg.KeyringService, jc.KeyringService)
	setString(&cfg.HomePath, jc.HomePath)
	setString(&cfg.LoginPath, jc.LoginPath)
	setString(&cfg.RegisterPath, jc.RegisterPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)

	if jc.WatchStorage != nil {
		cfg.WatchStorage = *jc.WatchStorage
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RevalidateInterval != nil {
		cfg.RevalidateInterval = jc.RevalidateInterval.Duration
	}
	if jc.RefreshWindow != nil {
		cfg.RefreshWindow = jc.RefreshWindow.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
