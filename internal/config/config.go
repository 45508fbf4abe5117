// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/SankaiAI/data-learning-lab/internal/errors"
)

// Config is the complete service configuration.
type Config struct {
	Server ServerConfig
	Sim    SimConfig
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port    string
	GinMode string
}

// SimConfig holds the default simulation parameters used when an API
// request or CLI run does not override them.
type SimConfig struct {
	UserCount int
	TrueLift  float64
	Seed      int64
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Sim: SimConfig{
			UserCount: getEnvIntOrDefault("SIM_USER_COUNT", 2000),
			TrueLift:  getEnvFloatOrDefault("SIM_TRUE_LIFT", 0.10),
			Seed:      int64(getEnvIntOrDefault("SIM_SEED", 42)),
		},
	}
	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if cfg.Sim.UserCount <= 0 {
		return errors.ConfigInvalid("SIM_USER_COUNT must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
