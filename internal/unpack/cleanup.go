package unpack

import (
	"context"
	"os"
	"path/filepath"

	"decant/internal/fileutil"
	"decant/internal/logging"
	"decant/internal/naming"
	"decant/internal/services"
)

// Cleanup deletes source entries the Ledger records as fully processed and,
// when items are relocated into named folders, target entries whose names do
// not look like decant output. Removal failures are counted and logged.
func (e *Engine) Cleanup(ctx context.Context) (CleanupResult, error) {
	ctx = services.WithStage(ctx, "cleanup")
	logger := logging.WithContext(ctx, e.logger)
	var result CleanupResult

	sources, err := os.ReadDir(e.svc.SourceDir)
	if err != nil && !os.IsNotExist(err) {
		return result, services.Wrap(services.ErrNotFound, "cleanup", "read source", e.svc.SourceDir, err)
	}
	for _, entry := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		key := naming.IdentityKey(entry.Name(), entry.IsDir())
		if key == "" {
			continue
		}
		rec, err := e.history.HistoryByKey(ctx, key)
		if err != nil {
			return result, err
		}
		if rec == nil {
			continue
		}
		complete, err := e.isComplete(ctx, key)
		if err != nil {
			return result, err
		}
		if !complete {
			continue
		}
		path := filepath.Join(e.svc.SourceDir, entry.Name())
		if err := fileutil.RemovePath(path); err != nil {
			result.Failures++
			logger.Error("failed to remove processed source", logging.String("path", path), logging.Error(err))
			continue
		}
		result.SourcesRemoved = append(result.SourcesRemoved, path)
		logger.Info("removed processed source",
			logging.String("path", path),
			logging.String(logging.FieldItemKey, key),
			logging.String(logging.FieldEventType, "source_removed"),
		)
	}

	if e.svc.Move.SkipParentLevels == 0 {
		targets, err := os.ReadDir(e.svc.TargetDir)
		if err != nil && !os.IsNotExist(err) {
			return result, services.Wrap(services.ErrNotFound, "cleanup", "read target", e.svc.TargetDir, err)
		}
		for _, entry := range targets {
			if naming.IsValidTargetName(entry.Name()) {
				continue
			}
			path := filepath.Join(e.svc.TargetDir, entry.Name())
			if err := fileutil.RemovePath(path); err != nil {
				result.Failures++
				logger.Error("failed to remove invalid target entry", logging.String("path", path), logging.Error(err))
				continue
			}
			result.TargetsRemoved = append(result.TargetsRemoved, path)
			logger.Info("removed invalid target entry",
				logging.String("path", path),
				logging.String(logging.FieldEventType, "target_removed"),
			)
		}
	}

	logger.Info("cleanup complete",
		logging.Int("sources_removed", len(result.SourcesRemoved)),
		logging.Int("targets_removed", len(result.TargetsRemoved)),
		logging.Int("failures", result.Failures),
	)
	return result, nil
}
