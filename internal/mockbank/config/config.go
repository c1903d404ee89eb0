// Package config handles configuration for the mock banking backend,
// including defaults, environment, JSON overlay and command-line flags.
package config

import "time"

// SeedUser is an account created at startup so the client has someone to
// log in as.
type SeedUser struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Config holds runtime settings for the mock backend.
//
// Fields:
//   - Addr: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: lifetime of issued tokens.
//   - RequireOTP: when set, login and register answer mfaRequired and a
//     verify-otp call with OTPCode is needed to obtain a token.
//   - SeedUsers: accounts created at startup.
type Config struct {
	Addr                        string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	RequireOTP                  bool
	OTPCode                     string
	LogLevel                    string
	SeedUsers                   []SeedUser
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RequireOTP = false
	c.OTPCode = "123456"
	c.LogLevel = "info"
	c.SeedUsers = []SeedUser{
		{Email: "demo@apnabank.test", Password: "password123", FirstName: "Demo", LastName: "Customer", Role: "CUSTOMER"},
		{Email: "admin@apnabank.test", Password: "admin12345", FirstName: "Bank", LastName: "Admin", Role: "ADMIN"},
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from MOCKBANK_* variables, an optional JSON file and finally from
// command-line flags found in args.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, lookupEnv)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
