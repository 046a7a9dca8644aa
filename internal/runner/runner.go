package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"decant/internal/archive"
	"decant/internal/config"
	"decant/internal/ledger"
	"decant/internal/logging"
	"decant/internal/preflight"
	"decant/internal/services"
	"decant/internal/staging"
	"decant/internal/unpack"
)

// Mode selects which passes a service run performs.
type Mode int

const (
	// ModeFull processes pending items and then cleans up.
	ModeFull Mode = iota
	// ModeCleanupOnly skips processing and only runs cleanup.
	ModeCleanupOnly
)

// Report summarizes one service run.
type Report struct {
	Service   string
	RunID     string
	Pending   int
	Skipped   int
	Succeeded int
	Partial   int
	Failed    int
	Cleanup   unpack.CleanupResult
	Duration  time.Duration
	Err       error
}

// Option configures a Runner.
type Option func(*Runner)

// WithExtractorOptions passes options to every service's archive extractor.
func WithExtractorOptions(opts ...archive.Option) Option {
	return func(r *Runner) {
		r.extractorOpts = append(r.extractorOpts, opts...)
	}
}

// Runner executes service runs against a loaded configuration.
type Runner struct {
	cfg           *config.Config
	base          *slog.Logger
	logger        *slog.Logger
	extractorOpts []archive.Option
}

// New constructs a Runner.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{cfg: cfg, base: logger, logger: logging.NewComponentLogger(logger, "runner")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the named services (all configured services when names is
// empty) in order. The returned error only reports unknown service names;
// per-service failures are carried in each Report.
func (r *Runner) Run(ctx context.Context, names []string, mode Mode) ([]Report, error) {
	if len(names) == 0 {
		names = r.cfg.ServiceNames()
	}
	for _, name := range names {
		if _, err := r.cfg.Service(name); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "runner", "select service", name, err)
		}
	}

	reports := make([]Report, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report := r.runService(ctx, name, mode)
		if report.Err != nil {
			logging.ErrorWithContext(r.logger, "service run failed", "service_failed",
				logging.String(logging.FieldService, name),
				logging.Error(report.Err),
				logging.String(logging.FieldErrorHint, "fix the reported problem; remaining services continue"),
			)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *Runner) runService(ctx context.Context, name string, mode Mode) (report Report) {
	start := time.Now()
	report = Report{Service: name, RunID: uuid.NewString()}
	ctx = services.WithService(ctx, name)
	ctx = services.WithRequestID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)
	defer func() {
		report.Duration = time.Since(start)
		logger.Info("service run finished",
			logging.Int("pending", report.Pending),
			logging.Int("skipped", report.Skipped),
			logging.Int("succeeded", report.Succeeded),
			logging.Int("partial", report.Partial),
			logging.Int("failed", report.Failed),
			logging.Int("sources_removed", len(report.Cleanup.SourcesRemoved)),
			logging.Int("targets_removed", len(report.Cleanup.TargetsRemoved)),
			logging.Duration("duration", report.Duration),
			logging.String(logging.FieldEventType, "service_finished"),
		)
	}()

	svc, err := r.cfg.Service(name)
	if err != nil {
		report.Err = services.Wrap(services.ErrConfiguration, "runner", "load service", name, err)
		return report
	}
	if err := preflight.Err(preflight.RunService(svc)); err != nil {
		report.Err = services.Wrap(services.ErrConfiguration, "preflight", "check directories", "", err)
		return report
	}

	store, err := ledger.OpenService(r.cfg, name)
	if err != nil {
		report.Err = err
		return report
	}
	defer store.Close()

	area := staging.New(svc.UnzipTempDir, svc.TargetTempDir, r.cfg.LockPath(name), logger)
	if err := area.Acquire(); err != nil {
		report.Err = services.Wrap(services.ErrTransient, "staging", "acquire lock", "", err)
		return report
	}
	defer area.Release()

	extractorOpts := append([]archive.Option{archive.WithLogger(logging.NewComponentLogger(r.base, "archive"))}, r.extractorOpts...)
	engine := unpack.NewEngineWithDependencies(name, svc, area, r.base, unpack.Dependencies{
		History:   store,
		Metadata:  store,
		Extractor: archive.NewExtractor(extractorOpts...),
	})

	if mode == ModeFull {
		if err := area.Reset(); err != nil {
			report.Err = services.Wrap(services.ErrRelocation, "staging", "reset", "", err)
			return report
		}
		if err := r.process(ctx, engine, &report); err != nil {
			report.Err = err
			return report
		}
	}

	result, err := engine.Cleanup(ctx)
	report.Cleanup = result
	if err != nil {
		report.Err = err
	}
	return report
}

// process collects and processes every pending work item. Only fatal errors
// and cancellation stop the loop.
func (r *Runner) process(ctx context.Context, engine *unpack.Engine, report *Report) error {
	logger := logging.WithContext(ctx, r.logger)
	collection, err := engine.CollectWorkItems(ctx)
	if err != nil {
		return err
	}
	report.Pending = len(collection.Pending)
	report.Skipped = len(collection.Skipped)

	for _, item := range collection.Pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome, err := engine.ProcessWorkItem(ctx, item)
		switch outcome {
		case unpack.OutcomeSuccess:
			report.Succeeded++
		case unpack.OutcomePartial:
			report.Partial++
		default:
			report.Failed++
		}
		if err == nil {
			continue
		}
		if services.IsFatal(err) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("work item %s: %w", item.Key, err)
		}
		logging.ErrorWithContext(logger, "work item failed", "item_failed",
			logging.String(logging.FieldItemKey, item.Key),
			logging.String("source", item.SourcePath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the item is retried on the next run"),
		)
	}
	return nil
}
