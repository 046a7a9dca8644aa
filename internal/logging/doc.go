// Package logging assembles structured slog loggers and formatting helpers used
// across decant.
//
// It owns the configurable console/JSON handlers, fans run output into a
// per-run JSON log file, and exposes context-aware helpers so pipeline code can
// tag log lines with the service, work item key, stage, and run correlation ID.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
