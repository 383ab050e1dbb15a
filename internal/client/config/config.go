package config

import "time"

// Config holds runtime settings for the session client.
//
// Fields:
//   - BackendURL: base URL of the identity backend.
//   - RequestTimeout: upper bound for each backend call.
//   - DatabasePath: SQLite file holding the session token.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BackendURL     string
	RequestTimeout time.Duration
	DatabasePath   string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://localhost:4000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "session.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
