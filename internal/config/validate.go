package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateOrder(); err != nil {
		return err
	}
	for _, name := range c.ServiceNames() {
		if err := c.validateService(name, c.Services[name]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func (c *Config) validateOrder() error {
	seen := make(map[string]struct{}, len(c.Order))
	for _, name := range c.Order {
		if name == "" {
			return errors.New("order must not contain empty service names")
		}
		if _, ok := c.Services[name]; !ok {
			return fmt.Errorf("order references unknown service %q", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("order lists service %q more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (c *Config) validateService(name string, svc Service) error {
	prefix := "services." + name
	required := []struct {
		key   string
		value string
	}{
		{"source_dir", svc.SourceDir},
		{"unzip_temp_dir", svc.UnzipTempDir},
		{"target_temp_dir", svc.TargetTempDir},
		{"target_dir", svc.TargetDir},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s.%s must be set", prefix, field.key)
		}
	}
	if svc.Move.SkipParentLevels < 0 {
		return fmt.Errorf("%s.move.skip_parent_levels must be >= 0", prefix)
	}
	if strings.ContainsAny(svc.Database, `/\`) {
		return fmt.Errorf("%s.database must be a plain name, got %q", prefix, svc.Database)
	}

	// Staging roots are wiped at the start of every run, so they must never
	// alias or contain the source or target directories.
	scratch := []string{svc.UnzipTempDir, svc.TargetTempDir}
	keep := []string{svc.SourceDir, svc.TargetDir}
	if svc.UnzipTempDir == svc.TargetTempDir {
		return fmt.Errorf("%s.unzip_temp_dir and target_temp_dir must differ", prefix)
	}
	for _, s := range scratch {
		for _, k := range keep {
			if s == k || isWithin(k, s) {
				return fmt.Errorf("%s: staging directory %q overlaps %q", prefix, s, k)
			}
		}
	}
	return nil
}

// isWithin reports whether path lies inside (or equals) root.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
