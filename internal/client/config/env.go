package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	BackendURL     string        `env:"BACKEND_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	DatabasePath   string        `env:"DB_PATH"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

const envPrefix = "ADHERETRACK_"

// parseEnv overlays Config with the ADHERETRACK_* variables that are set.
// Panics on malformed values.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}

	if ec.BackendURL != "" {
		cfg.BackendURL = ec.BackendURL
	}
	if ec.RequestTimeout > 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
	if ec.DatabasePath != "" {
		cfg.DatabasePath = ec.DatabasePath
	}
	if ec.LogLevel != "" {
		cfg.LogLevel = ec.LogLevel
	}
}
