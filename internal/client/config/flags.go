package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   API base URL
//	-s string   storage backend
//	-d string   sqlite database path
//	-i int      revalidation interval in seconds
//	-r int      token refresh window in seconds
//	-l string   log level
//	-m string   metrics listen address
//
// args is filtered with flagx.FilterArgs first so subcommand flags owned by
// cobra do not trip the parser. Parse errors panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-d", "-i", "-r", "-l", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the banking API")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend: sqlite, keyring, redis, memory")
	fs.StringVar(&cfg.StoragePath, "d", cfg.StoragePath, "sqlite database path")
	revalidate := fs.Int("i", int(cfg.RevalidateInterval.Seconds()), "revalidation interval (in seconds, 0 disables)")
	refresh := fs.Int("r", int(cfg.RefreshWindow.Seconds()), "token refresh window (in seconds, 0 disables)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.RevalidateInterval = time.Duration(*revalidate) * time.Second
		case "r":
			cfg.RefreshWindow = time.Duration(*refresh) * time.Second
		}
	})
}
