package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"decant/internal/config"
	"decant/internal/logging"
	"decant/internal/services"
)

func TestNewFromConfigWritesJSONRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "debug"

	logger, logPath, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if !strings.HasPrefix(logPath, cfg.Paths.LogDir) {
		t.Fatalf("expected run log under %s, got %s", cfg.Paths.LogDir, logPath)
	}
	logger.Info("run started", logging.String(logging.FieldService, "vam"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.SplitN(string(data), "\n", 2)[0]), &entry); err != nil {
		t.Fatalf("run log is not JSON: %v (%q)", err, data)
	}
	if entry["msg"] != "run started" || entry["service"] != "vam" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerRendersSubjectFromContext(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithService(context.Background(), "vam")
	ctx = services.WithItemKey(ctx, "1234")
	ctx = services.WithStage(ctx, "extract")
	ctx = services.WithRequestID(ctx, "run-1")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "unpack"))
	logger.Info("extracted", logging.Int("files", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(content)
	for _, want := range []string{"INFO [unpack] VAM · 1234 (extract) – extracted", "    - files: 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if strings.Contains(out, "run-1") {
		t.Fatalf("correlation id should not be rendered at info level: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "skipped", "item_skipped", logging.String(logging.FieldImpact, "item left in source"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[logging.FieldEventType] != "item_skipped" {
		t.Fatalf("event_type = %v", entry[logging.FieldEventType])
	}
	if entry[logging.FieldImpact] != "item left in source" {
		t.Fatalf("impact should keep caller value, got %v", entry[logging.FieldImpact])
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error_hint")
	}
}

func TestCleanupOldLogsRemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "decant-old.log")
	fresh := filepath.Join(dir, "decant-new.log")
	current := filepath.Join(dir, "decant-current.log")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, current, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	past := time.Now().AddDate(0, 0, -10)
	for _, p := range []string{old, current, other} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	pruned := logging.CleanupOldLogs(logging.NewNop(), 5, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "decant-*.log",
		Exclude: []string{current},
	})

	if pruned != 1 {
		t.Fatalf("expected one pruned log, got %d", pruned)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be pruned", old)
	}
	for _, p := range []string{fresh, current, other} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to remain: %v", p, err)
		}
	}
}

func TestRunLogTargetSparesCurrentLog(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	current := filepath.Join(dir, logging.RunLogName(now))
	stale := filepath.Join(dir, logging.RunLogName(now.Add(-48*time.Hour)))
	for _, p := range []string{current, stale} {
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		past := now.AddDate(0, 0, -3)
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	if got := logging.CleanupOldLogs(nil, 1, logging.RunLogTarget(dir, current)); got != 1 {
		t.Fatalf("expected one pruned log, got %d", got)
	}
	if _, err := os.Stat(current); err != nil {
		t.Fatalf("current log removed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale log should be pruned")
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decant-old.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(-1, 0, 0)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}
	if got := logging.CleanupOldLogs(nil, 0, logging.RunLogTarget(dir, "")); got != 0 {
		t.Fatalf("retention 0 should keep logs, pruned %d", got)
	}
}
