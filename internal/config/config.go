package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration loaded from the environment.
type Config struct {
	ListenAddr string `env:"DIVESIM_LISTEN_ADDR" envDefault:":8080"`
	DBPath     string `env:"DIVESIM_DB_PATH" envDefault:"divesim.db"`
	LogLevel   string `env:"DIVESIM_LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
