package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"decant/internal/config"
)

func writeConfig(t *testing.T, dir string, cfg map[string]any) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func serviceSection(base string) map[string]any {
	return map[string]any{
		"source_dir":      filepath.Join(base, "src"),
		"unzip_temp_dir":  filepath.Join(base, "tmp", "in"),
		"target_temp_dir": filepath.Join(base, "tmp", "out"),
		"target_dir":      filepath.Join(base, "library"),
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "decant", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "decant"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.ServiceNames()) != 0 {
		t.Fatalf("expected no services by default, got %v", cfg.ServiceNames())
	}
}

func TestLoadServiceDefaultsDatabaseAndPassword(t *testing.T) {
	base := t.TempDir()
	t.Setenv("DECANT_DEFAULT_PASSWORD", "from-env")
	path := writeConfig(t, base, map[string]any{
		"paths":    map[string]any{"state_dir": filepath.Join(base, "state")},
		"services": map[string]any{"vam": serviceSection(base)},
	})

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q, got %q (exists=%v)", path, resolved, exists)
	}
	svc, err := cfg.Service("vam")
	if err != nil {
		t.Fatalf("Service: %v", err)
	}
	if svc.Database != "vam" {
		t.Fatalf("expected database to default to service name, got %q", svc.Database)
	}
	if svc.DefaultPassword != "from-env" {
		t.Fatalf("expected env password fallback, got %q", svc.DefaultPassword)
	}
	if got, want := cfg.LedgerPath("vam"), filepath.Join(base, "state", "vam.db"); got != want {
		t.Fatalf("ledger path = %q, want %q", got, want)
	}
	if _, err := cfg.Service("missing"); err == nil {
		t.Fatal("expected error for unknown service")
	}
}

func TestLoadPrefersConfiguredPasswordOverEnv(t *testing.T) {
	base := t.TempDir()
	t.Setenv("DECANT_DEFAULT_PASSWORD", "from-env")
	svc := serviceSection(base)
	svc["default_password"] = "from-file"
	path := writeConfig(t, base, map[string]any{"services": map[string]any{"vam": svc}})

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.Services["vam"].DefaultPassword; got != "from-file" {
		t.Fatalf("expected file password to win, got %q", got)
	}
}

func TestServiceNamesHonoursOrder(t *testing.T) {
	base := t.TempDir()
	a := serviceSection(filepath.Join(base, "a"))
	b := serviceSection(filepath.Join(base, "b"))
	c := serviceSection(filepath.Join(base, "c"))

	path := writeConfig(t, base, map[string]any{
		"services": map[string]any{"alpha": a, "bravo": b, "charlie": c},
	})
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := strings.Join(cfg.ServiceNames(), ","); got != "alpha,bravo,charlie" {
		t.Fatalf("expected sorted names, got %s", got)
	}

	path = writeConfig(t, base, map[string]any{
		"order":    []string{"charlie", "alpha", "bravo"},
		"services": map[string]any{"alpha": a, "bravo": b, "charlie": c},
	})
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := strings.Join(cfg.ServiceNames(), ","); got != "charlie,alpha,bravo" {
		t.Fatalf("expected explicit order, got %s", got)
	}
}

func TestValidateRejectsInvalidServices(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{
			name:   "missing target",
			mutate: func(s map[string]any) { delete(s, "target_dir") },
			want:   "target_dir must be set",
		},
		{
			name:   "negative skip",
			mutate: func(s map[string]any) { s["move"] = map[string]any{"skip_parent_levels": -1} },
			want:   "skip_parent_levels",
		},
		{
			name:   "staging equals source",
			mutate: func(s map[string]any) { s["unzip_temp_dir"] = s["source_dir"] },
			want:   "overlaps",
		},
		{
			name:   "target inside staging",
			mutate: func(s map[string]any) { s["target_dir"] = filepath.Join(base, "tmp", "out", "lib") },
			want:   "overlaps",
		},
		{
			name:   "shared staging roots",
			mutate: func(s map[string]any) { s["target_temp_dir"] = s["unzip_temp_dir"] },
			want:   "must differ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := serviceSection(base)
			tt.mutate(svc)
			path := writeConfig(t, t.TempDir(), map[string]any{"services": map[string]any{"vam": svc}})
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateRejectsUnknownOrderEntry(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, base, map[string]any{
		"order":    []string{"ghost"},
		"services": map[string]any{"vam": serviceSection(base)},
	})
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "unknown service") {
		t.Fatalf("expected unknown service error, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\nstaging = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	svc, err := cfg.Service("vam")
	if err != nil {
		t.Fatalf("expected sample service: %v", err)
	}
	if !strings.HasPrefix(svc.SourceDir, tempHome) {
		t.Fatalf("expected sample source dir under HOME, got %q", svc.SourceDir)
	}
}

func TestEnsureDirectoriesCreatesStateAndLogs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
