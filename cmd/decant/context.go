package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"decant/internal/config"
	"decant/internal/ledger"
	"decant/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run logger and prunes run logs past retention.
func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, logPath, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RunLogTarget(cfg.Paths.LogDir, logPath))
	return logger, nil
}

// resolveService picks the service a ledger command targets. With a single
// configured service the flag may be omitted.
func (c *commandContext) resolveService(name string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name != "" {
		if _, err := cfg.Service(name); err != nil {
			return "", err
		}
		return name, nil
	}
	names := cfg.ServiceNames()
	switch len(names) {
	case 0:
		return "", fmt.Errorf("no services configured")
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("several services configured (%s); choose one with --service", strings.Join(names, ", "))
	}
}

func (c *commandContext) withLedger(service string, fn func(name string, store *ledger.Store) error) error {
	name, err := c.resolveService(service)
	if err != nil {
		return err
	}
	store, err := ledger.OpenService(c.config, name)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(name, store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
