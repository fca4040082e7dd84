package config

import "time"

// Storage backends accepted in Config.StorageBackend.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds runtime settings for the FoodFinder CLI.
//
// Fields:
//   - ServerURL: base URL of the auth backend.
//   - APIKey: project key sent in the apikey header.
//   - DataDir: directory of the local SQLite cache.
//   - StorageBackend: one of sqlite, redis, memory.
//   - RedisAddr: host:port of Redis when StorageBackend is redis.
//   - RequestTimeout: HTTP timeout of a single backend request.
//   - SwitchAttemptTimeout: bound of each network attempt of an account switch.
//   - RememberPasswords: keep login passwords in the saved accounts.
//   - CachePassphrase: when set, saved accounts are encrypted with it.
type Config struct {
	ServerURL            string
	APIKey               string
	DataDir              string
	StorageBackend       string
	RedisAddr            string
	RequestTimeout       time.Duration
	SwitchAttemptTimeout time.Duration
	RememberPasswords    bool
	CachePassphrase      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.APIKey = ""
	c.DataDir = "foodfinder"
	c.StorageBackend = StorageSQLite
	c.RedisAddr = "127.0.0.1:6379"
	c.RequestTimeout = 10 * time.Second
	c.SwitchAttemptTimeout = 12 * time.Second
	c.RememberPasswords = true
	c.CachePassphrase = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
