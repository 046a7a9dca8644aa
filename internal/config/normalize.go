package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeServices(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServices() error {
	if c.Services == nil {
		c.Services = map[string]Service{}
	}
	envPassword, hasEnvPassword := os.LookupEnv("DECANT_DEFAULT_PASSWORD")
	for name, svc := range c.Services {
		var err error
		prefix := "services." + name
		if svc.SourceDir, err = expandPath(strings.TrimSpace(svc.SourceDir)); err != nil {
			return fmt.Errorf("%s.source_dir: %w", prefix, err)
		}
		if svc.UnzipTempDir, err = expandPath(strings.TrimSpace(svc.UnzipTempDir)); err != nil {
			return fmt.Errorf("%s.unzip_temp_dir: %w", prefix, err)
		}
		if svc.TargetTempDir, err = expandPath(strings.TrimSpace(svc.TargetTempDir)); err != nil {
			return fmt.Errorf("%s.target_temp_dir: %w", prefix, err)
		}
		if svc.TargetDir, err = expandPath(strings.TrimSpace(svc.TargetDir)); err != nil {
			return fmt.Errorf("%s.target_dir: %w", prefix, err)
		}
		svc.Database = strings.TrimSpace(svc.Database)
		if svc.Database == "" {
			svc.Database = name
		}
		if svc.DefaultPassword == "" && hasEnvPassword {
			svc.DefaultPassword = envPassword
		}
		c.Services[name] = svc
	}
	for i, name := range c.Order {
		c.Order[i] = strings.TrimSpace(name)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
