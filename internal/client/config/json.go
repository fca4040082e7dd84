package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/foodfinder/internal/flagx"
	"github.com/dmitrijs2005/foodfinder/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations use timex.Duration so they can be strings like "10s" or integer
// nanoseconds. Missing keys leave the current values alone.
type JsonConfig struct {
	ServerURL            string          `json:"server_url"`
	APIKey               string          `json:"api_key"`
	DataDir              string          `json:"data_dir"`
	StorageBackend       string          `json:"storage_backend"`
	RedisAddr            string          `json:"redis_addr"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	SwitchAttemptTimeout *timex.Duration `json:"switch_attempt_timeout"`
	RememberPasswords    *bool           `json:"remember_passwords"`
	CachePassphrase      string          `json:"cache_passphrase"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.APIKey, jc.APIKey)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.StorageBackend, jc.StorageBackend)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.CachePassphrase, jc.CachePassphrase)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SwitchAttemptTimeout != nil {
		cfg.SwitchAttemptTimeout = jc.SwitchAttemptTimeout.Duration
	}
	if jc.RememberPasswords != nil {
		cfg.RememberPasswords = *jc.RememberPasswords
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
