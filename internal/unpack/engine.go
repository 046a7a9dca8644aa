package unpack

import (
	"context"
	"fmt"
	"log/slog"

	"decant/internal/archive"
	"decant/internal/config"
	"decant/internal/fileutil"
	"decant/internal/ledger"
	"decant/internal/logging"
	"decant/internal/naming"
	"decant/internal/services"
	"decant/internal/staging"
)

// Dependencies are the collaborators an Engine needs. Nil Extractor and
// Sniffer fields fall back to the production implementations.
type Dependencies struct {
	History   History
	Metadata  MetadataSource
	Extractor Extractor
	Sniffer   *archive.Sniffer
}

// Engine reorganizes the work items of one configured service.
type Engine struct {
	service   string
	svc       config.Service
	area      *staging.Area
	history   History
	metadata  MetadataSource
	extractor Extractor
	sniffer   *archive.Sniffer
	logger    *slog.Logger
}

// NewEngine wires an Engine to a ledger store and the default codecs.
func NewEngine(service string, svc config.Service, area *staging.Area, store *ledger.Store, logger *slog.Logger) *Engine {
	return NewEngineWithDependencies(service, svc, area, logger, Dependencies{
		History:  store,
		Metadata: store,
	})
}

// NewEngineWithDependencies allows injecting collaborators (used in tests).
func NewEngineWithDependencies(service string, svc config.Service, area *staging.Area, logger *slog.Logger, deps Dependencies) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	engineLogger := logging.NewComponentLogger(logger, "unpack").With(logging.String(logging.FieldService, service))
	if deps.Extractor == nil {
		deps.Extractor = archive.NewExtractor(archive.WithLogger(engineLogger))
	}
	if deps.Sniffer == nil {
		deps.Sniffer = archive.NewSniffer(engineLogger)
	}
	return &Engine{
		service:   service,
		svc:       svc,
		area:      area,
		history:   deps.History,
		metadata:  deps.Metadata,
		extractor: deps.Extractor,
		sniffer:   deps.Sniffer,
		logger:    engineLogger,
	}
}

// itemPlan holds the per-item values derived from metadata.
type itemPlan struct {
	folder   string
	password string
	inbound  string
	outbound string
}

func (e *Engine) plan(ctx context.Context, key string) (itemPlan, error) {
	meta, err := e.metadata.LookupMetadata(ctx, key)
	if err != nil {
		return itemPlan{}, err
	}
	folder := naming.FolderName(key, meta.DisplayTitle())
	password := meta.Password()
	if password == "" {
		password = e.svc.DefaultPassword
	}
	return itemPlan{
		folder:   folder,
		password: password,
		inbound:  e.area.ItemInbound(folder),
		outbound: e.area.ItemOutbound(folder),
	}, nil
}

// ProcessWorkItem extracts, flattens, and relocates one work item, then
// records it in the Ledger. Unit failures downgrade the outcome to partial;
// relocation and Ledger failures are returned.
func (e *Engine) ProcessWorkItem(ctx context.Context, item WorkItem) (Outcome, error) {
	ctx = services.WithItemKey(ctx, item.Key)
	logger := logging.WithContext(ctx, e.logger)

	plan, err := e.plan(ctx, item.Key)
	if err != nil {
		return OutcomeFailed, err
	}
	logger.Info("processing work item",
		logging.String("source", item.SourcePath),
		logging.String("folder", plan.folder),
		logging.Int("files", len(item.Files)),
		logging.String(logging.FieldEventType, "item_start"),
	)

	for _, dir := range []string{plan.inbound, plan.outbound} {
		if err := fileutil.ResetDir(dir); err != nil {
			return OutcomeFailed, services.Wrap(services.ErrRelocation, "staging", "prepare item", "", err)
		}
	}

	failures := 0
	stageCtx := services.WithStage(ctx, "extract")
	for _, unit := range e.groupUnits(stageCtx, item, plan.password) {
		if err := ctx.Err(); err != nil {
			return OutcomeFailed, err
		}
		if err := e.stageUnit(stageCtx, item, unit, plan.outbound); err != nil {
			failures++
			logging.WarnWithContext(logging.WithContext(stageCtx, e.logger), "archive unit failed", "unit_failed",
				logging.String("archive", unit.Path),
				logging.String("format", unit.Format.String()),
				logging.Int("parts", len(unit.Parts)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the password and that every part is present"),
				logging.String(logging.FieldImpact, "content of this archive is missing from the target"),
			)
		}
		if _, err := e.relocateToInbound(plan.outbound, plan.inbound); err != nil {
			return OutcomeFailed, err
		}
	}

	nested, err := e.extractNested(services.WithStage(ctx, "nested"), plan)
	failures += nested
	if err != nil {
		return OutcomeFailed, err
	}

	target, err := e.finalize(services.WithStage(ctx, "relocate"), plan)
	if err != nil {
		return OutcomeFailed, err
	}
	if target == "" {
		return OutcomeFailed, services.Wrap(services.ErrExtraction, "relocate", "finalize", "no files were produced", nil)
	}
	if err := e.history.SaveHistory(ctx, item.Key, item.SourcePath, target); err != nil {
		return OutcomeFailed, err
	}

	outcome := OutcomeSuccess
	if failures > 0 {
		outcome = OutcomePartial
	}
	logger.Info("work item complete",
		logging.String("target", target),
		logging.String("outcome", outcome.String()),
		logging.Int("failed_units", failures),
		logging.String(logging.FieldEventType, "item_complete"),
	)
	return outcome, nil
}

// stageUnit extracts a recognized unit into outbound, or copies the files of
// an unrecognized one. Inert multi-part fragments are never copied.
func (e *Engine) stageUnit(ctx context.Context, item WorkItem, unit archive.Unit, outbound string) error {
	logger := logging.WithContext(ctx, e.logger)
	if unit.Format != archive.Unknown {
		logger.Info("extracting archive",
			logging.String("archive", unit.Path),
			logging.String("format", unit.Format.String()),
			logging.Int("parts", len(unit.Parts)),
		)
		return e.extractor.Extract(ctx, unit, outbound)
	}

	var copyErr error
	for _, part := range unit.Parts {
		if archive.IsMultipart(part) {
			logger.Debug("skipping inert fragment", logging.String("path", part))
			continue
		}
		dst := e.stagedPath(part, outbound)
		if err := fileutil.CopyFile(part, dst); err != nil {
			copyErr = fmt.Errorf("copy %s: %w", part, err)
			logger.Error("failed to copy file", logging.String("path", part), logging.Error(err))
			continue
		}
		logger.Debug("copied file", logging.String("path", part), logging.String("dest", dst))
	}
	return copyErr
}

