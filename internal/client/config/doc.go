// Package config loads runtime configuration for the FoodFinder CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the auth backend
//	-k string   API key
//	-s string   account storage backend: sqlite, redis, memory
//	-r string   Redis address
//	-t int      request timeout (seconds)
//	-p string   passphrase that encrypts the saved accounts
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "api_key": "anon-key",
//	  "data_dir": "foodfinder",
//	  "storage_backend": "sqlite",
//	  "redis_addr": "127.0.0.1:6379",
//	  "request_timeout": "10s",
//	  "switch_attempt_timeout": "12s",
//	  "remember_passwords": true,
//	  "cache_passphrase": ""
//	}
//
// Environment variables are not read; use the JSON file or flags.
package config
