package main

import (
	"strings"
	"sync"

	"shortfactory/internal/config"
	"shortfactory/internal/services"
)

// commandContext lazily loads configuration and builds the wired
// application exactly once per process, mirroring five82-spindle's
// commandContext.ensureConfig sync.Once pattern.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	cfg        *config.Config
	cfgErr     error

	appOnce sync.Once
	app     *application
	appErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.cfgErr = services.Wrap(services.ErrConfiguration, "cli", "load_config", "failed to load configuration", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.cfgErr = services.Wrap(services.ErrConfiguration, "cli", "ensure_directories", "failed to prepare configured directories", err)
			return
		}
		c.cfg = cfg
	})
	return c.cfg, c.cfgErr
}

// ensureApp builds every collaborator once and returns the application.
// Callers must invoke application.Close when the command returns.
func (c *commandContext) ensureApp() (*application, error) {
	c.appOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = buildApplication(cfg)
	})
	return c.app, c.appErr
}
