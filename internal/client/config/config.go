// Package config handles configuration for the CareChain client:
// defaults, JSON overlay and command-line flags.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - BaseURL: origin of the backend REST API.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DatabasePath: location of the local SQLite cache.
//   - RetryMaxAttempts / RetryBaseDelay: bounded backoff for read requests.
type Config struct {
	BaseURL             string
	OnlineCheckInterval time.Duration
	DatabasePath        string
	RetryMaxAttempts    uint64
	RetryBaseDelay      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8000"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "carechain.db"
	c.RetryMaxAttempts = 2
	c.RetryBaseDelay = 250 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
