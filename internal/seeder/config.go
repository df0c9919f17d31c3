package seeder

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds seeding settings. Flags on termctl seed override it.
type Config struct {
	Path      string `yaml:"path"       env:"SEEDER_PATH"`
	BatchSize int    `yaml:"batch_size" env:"SEEDER_BATCH_SIZE" env-default:"500"`
	// Replace deletes every category present in the file before inserting.
	Replace bool `yaml:"replace" env:"SEEDER_REPLACE"`
	DryRun  bool `yaml:"dry_run" env:"SEEDER_DRY_RUN"`
}

// LoadConfig reads seeder settings from an optional YAML file plus ENV.
// An empty path means ENV and defaults only; a missing file is an error.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else if _, statErr := os.Stat(path); statErr != nil {
		return nil, fmt.Errorf("seeder config: %w", statErr)
	} else {
		err = cleanenv.ReadConfig(path, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("seeder config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would make a run meaningless.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("seeder config: batch_size must be > 0 (got %d)", c.BatchSize)
	}
	return nil
}
