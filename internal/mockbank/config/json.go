package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/bankfront/internal/flagx"
	"github.com/dmitrijs2005/bankfront/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent fields keep
// their current value.
type JsonConfig struct {
	Addr                        *string         `json:"addr"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	RequireOTP                  *bool           `json:"require_otp"`
	OTPCode                     *string         `json:"otp_code"`
	LogLevel                    *string         `json:"log_level"`
	SeedUsers                   []SeedUser      `json:"seed_users"`
}

// parseJson loads the file named by -c/-config in args. Without such a flag
// nothing is loaded. Read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var c JsonConfig
	if err := json.Unmarshal(file, &c); err != nil {
		panic(err)
	}

	if c.Addr != nil {
		cfg.Addr = *c.Addr
	}
	if c.SecretKey != nil {
		cfg.SecretKey = *c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RequireOTP != nil {
		cfg.RequireOTP = *c.RequireOTP
	}
	if c.OTPCode != nil {
		cfg.OTPCode = *c.OTPCode
	}
	if c.LogLevel != nil {
		cfg.LogLevel = *c.LogLevel
	}
	if c.SeedUsers != nil {
		cfg.SeedUsers = c.SeedUsers
	}
}
