// Package config loads runtime configuration for the bankfront client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory and BANKFRONT_* environment
//     variables (see parseEnv).
//  3. Optional JSON file selected via -c or -config (see parseJson).
//  4. Command-line flags (see parseFlags), which override everything else.
//
// Supported flags
//
//	-a string   base URL of the banking API
//	-s string   storage backend: sqlite, keyring, redis or memory
//	-d string   sqlite database path
//	-i int      background revalidation interval (seconds, 0 disables)
//	-l string   log level
//	-m string   metrics listen address
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "5m" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080",
//	  "storage_backend": "sqlite",
//	  "storage_path": "bankfront.db",
//	  "revalidate_interval": "5m"
//	}
package config
