package main

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/wh40k-terms/internal/app"
	"github.com/heartmarshall/wh40k-terms/internal/config"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	cfg    *config.Config
	logger *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, jsonFlag: jsonFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	var (
		cfg *config.Config
		err error
	)
	if path := *c.configFlag; path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	c.cfg = cfg
	c.logger = app.NewLogger(cfg.Log)
	return cfg, nil
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withServices wires the engine against the configured database for the
// duration of fn.
func (c *commandContext) withServices(ctx context.Context, fn func(*app.Services) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	svcs, err := app.NewServices(ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	return fn(svcs)
}
