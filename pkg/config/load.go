package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment. A .env file, when present,
// seeds the environment first; missing files are not an error.
func Load(logger *slog.Logger) (*App, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, using system environment variables")
	} else {
		logger.Info("environment variables loaded from .env file")
	}
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
