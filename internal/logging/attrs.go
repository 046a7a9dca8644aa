package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Attr is re-exported so callers build fields without importing slog.
type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error records err under the "error" key. A nil error is rendered as "<nil>"
// rather than dropped so the field set stays stable.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func toArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// fallback is a field injected when the caller did not supply it.
type fallback struct {
	key, value string
}

func withFallbacks(attrs []Attr, defaults ...fallback) []Attr {
	for _, d := range defaults {
		present := slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == d.key })
		if !present {
			attrs = append(attrs, String(d.key, d.value))
		}
	}
	return attrs
}

const defaultErrorHint = "inspect the run log for the preceding error"

// WarnWithContext logs a warning that always carries event_type, error_hint,
// and impact. Missing fields receive defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withFallbacks(attrs,
		fallback{FieldEventType, eventType},
		fallback{FieldErrorHint, defaultErrorHint},
		fallback{FieldImpact, "run continues with reduced results"},
	)
	logger.Warn(msg, toArgs(attrs)...)
}

// ErrorWithContext logs an error that always carries event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withFallbacks(attrs,
		fallback{FieldEventType, eventType},
		fallback{FieldErrorHint, defaultErrorHint},
	)
	logger.Error(msg, toArgs(attrs)...)
}

// NewComponentLogger tags logger with a component field. A nil logger yields
// a component-tagged no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

func NewNop() *slog.Logger { return slog.New(NoopHandler{}) }

// NoopHandler discards everything.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h NoopHandler) WithGroup(string) slog.Handler { return h }
