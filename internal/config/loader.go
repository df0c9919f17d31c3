package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultPath = "./config.yaml"

// Load reads configuration using the path in CONFIG_PATH (fallback
// ./config.yaml). Priority: ENV > YAML > env-default tags.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit YAML path. An empty path
// falls back to ./config.yaml; when that default file is absent the
// configuration comes from ENV and defaults only. A non-empty path that
// does not exist is an error.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = defaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
