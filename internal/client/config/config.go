package config

import "time"

// Storage backends understood by the token store.
const (
	StorageSQLite  = "sqlite"
	StorageKeyring = "keyring"
	StorageRedis   = "redis"
	StorageMemory  = "memory"
)

// Config holds runtime settings for the bankfront client.
//
// Units: all intervals are time.Duration. A zero RevalidateInterval disables
// background revalidation; an empty MetricsAddr disables the metrics endpoint.
// A token whose exp claim is closer than RefreshWindow is refreshed; zero
// disables refreshing.
type Config struct {
	APIBaseURL          string
	RequestTimeout      time.Duration
	StorageBackend      string
	StoragePath         string
	RedisAddr           string
	RedisChannel        string
	KeyringService      string
	WatchStorage        bool
	RevalidateInterval  time.Duration
	RefreshWindow       time.Duration
	OnlineCheckInterval time.Duration
	HomePath            string
	LoginPath           string
	RegisterPath        string
	LogLevel            string
	LogFile             string
	MetricsAddr         string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.RequestTimeout = 30 * time.Second
	c.StorageBackend = StorageSQLite
	c.StoragePath = "bankfront.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisChannel = "bankfront:storage"
	c.KeyringService = "com.apnabank.bankfront"
	c.WatchStorage = true
	c.RevalidateInterval = 5 * time.Minute
	c.RefreshWindow = 2 * time.Minute
	c.OnlineCheckInterval = 3 * time.Second
	c.HomePath = "/home"
	c.LoginPath = "/login"
	c.RegisterPath = "/register"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from defaults, then overlays the
// environment, an optional JSON file and finally command-line flags found in
// args (usually os.Args[1:]). Later sources take precedence.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv(".env")
	parseEnv(cfg, lookupEnv)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
