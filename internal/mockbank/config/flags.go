package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port to listen on
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-o bool     require OTP after password login
//	-l string   log level
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-o", "-l"})

	fs := flag.NewFlagSet("mockbank", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	validity := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	fs.BoolVar(&cfg.RequireOTP, "o", cfg.RequireOTP, "require OTP verification")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.AccessTokenValidityDuration = time.Duration(*validity) * time.Minute
		}
	})
}
