package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var lookupEnv = os.LookupEnv

// parseEnv overlays cfg with MOCKBANK_* variables after loading .env.
// Malformed values are ignored.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	_ = godotenv.Load(".env")

	if v, ok := lookup("MOCKBANK_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("MOCKBANK_SECRET_KEY"); ok && v != "" {
		cfg.SecretKey = v
	}
	if v, ok := lookup("MOCKBANK_OTP_CODE"); ok && v != "" {
		cfg.OTPCode = v
	}
	if v, ok := lookup("MOCKBANK_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("MOCKBANK_ACCESS_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AccessTokenValidityDuration = d
		}
	}
	if v, ok := lookup("MOCKBANK_REQUIRE_OTP"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RequireOTP = b
		}
	}
}
