package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeLoggerRespectsPerHandlerLevel(t *testing.T) {
	var console, file bytes.Buffer
	base := slog.New(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := TeeLogger(base, slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Debug("debug line")
	logger.Warn("warn line")

	if strings.Contains(console.String(), "debug line") {
		t.Fatalf("console handler should drop debug: %q", console.String())
	}
	if !strings.Contains(console.String(), "warn line") {
		t.Fatalf("console handler missing warn: %q", console.String())
	}
	if !strings.Contains(file.String(), "debug line") || !strings.Contains(file.String(), "warn line") {
		t.Fatalf("file handler should see both lines: %q", file.String())
	}
}

func TestTeeHandlerWithAttrsPropagates(t *testing.T) {
	var a, b bytes.Buffer
	h := TeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))
	logger := slog.New(h).With(slog.String(FieldService, "vam"))
	logger.InfoContext(context.Background(), "hello")

	for name, buf := range map[string]*bytes.Buffer{"a": &a, "b": &b} {
		if !strings.Contains(buf.String(), `"service":"vam"`) {
			t.Fatalf("handler %s missing attribute: %q", name, buf.String())
		}
	}
}

func TestTeeLoggerNilBase(t *testing.T) {
	var buf bytes.Buffer
	logger := TeeLogger(nil, slog.NewJSONHandler(&buf, nil))
	logger.Info("only sink")
	if !strings.Contains(buf.String(), "only sink") {
		t.Fatalf("expected output from sole handler, got %q", buf.String())
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink closed") }

func TestTeeHandlerJoinsErrorsAndKeepsWriting(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewJSONHandler(&buf, nil)
	h := TeeHandler(failingHandler{ok}, ok)
	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still written", 0))
	if err == nil || !strings.Contains(err.Error(), "sink closed") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !strings.Contains(buf.String(), "still written") {
		t.Fatalf("healthy branch should still receive the record: %q", buf.String())
	}
}
