package testsupport

import (
	"path/filepath"
	"testing"

	"decant/internal/config"
)

// DefaultService is the service name NewConfig configures.
const DefaultService = "vam"

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// One service named DefaultService is defined with every directory under the
// test's temp root.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Services = map[string]config.Service{
		DefaultService: serviceUnder(filepath.Join(base, DefaultService), DefaultService),
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

func serviceUnder(root, name string) config.Service {
	return config.Service{
		Database:      name,
		SourceDir:     filepath.Join(root, "source"),
		UnzipTempDir:  filepath.Join(root, "inbound"),
		TargetTempDir: filepath.Join(root, "outbound"),
		TargetDir:     filepath.Join(root, "library"),
	}
}

// WithService adds another service laid out like the default one.
func WithService(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Services[name] = serviceUnder(filepath.Join(b.baseDir, name), name)
	}
}

// WithDefaultPassword sets the default password of the named service.
func WithDefaultPassword(service, password string) ConfigOption {
	return func(b *configBuilder) {
		svc := b.cfg.Services[service]
		svc.DefaultPassword = password
		b.cfg.Services[service] = svc
	}
}

// WithSkipParentLevels sets move.skip_parent_levels on the named service.
func WithSkipParentLevels(service string, levels int) ConfigOption {
	return func(b *configBuilder) {
		svc := b.cfg.Services[service]
		svc.Move.SkipParentLevels = levels
		b.cfg.Services[service] = svc
	}
}

// WithRequireAllResolutions toggles resolution completeness checks on the named service.
func WithRequireAllResolutions(service string) ConfigOption {
	return func(b *configBuilder) {
		svc := b.cfg.Services[service]
		svc.RequireAllResolutions = true
		b.cfg.Services[service] = svc
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
