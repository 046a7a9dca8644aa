package unpack

import (
	"context"
	"path/filepath"

	"decant/internal/archive"
	"decant/internal/fileutil"
	"decant/internal/logging"
	"decant/internal/services"
)

// relocateToInbound moves every archive or multi-part fragment found under
// outbound into inbound, keeping relative paths. Existing destinations are
// replaced.
func (e *Engine) relocateToInbound(outbound, inbound string) (int, error) {
	files, err := fileutil.ListFiles(outbound)
	if err != nil {
		return 0, services.Wrap(services.ErrRelocation, "extract", "scan outbound", outbound, err)
	}
	moved := 0
	for _, path := range files {
		if !archive.IsMultipart(path) && e.sniffer.Classify(path) == archive.Unknown {
			continue
		}
		rel, err := filepath.Rel(outbound, path)
		if err != nil {
			return moved, services.Wrap(services.ErrRelocation, "extract", "stage nested archive", path, err)
		}
		if err := fileutil.MoveReplace(path, filepath.Join(inbound, rel)); err != nil {
			return moved, services.Wrap(services.ErrRelocation, "extract", "stage nested archive", path, err)
		}
		moved++
	}
	return moved, nil
}

// extractNested extracts archives from inbound staging until a pass finds
// nothing new to attempt. Archives that fail are remembered so later passes
// skip them. It returns the number of failed units.
func (e *Engine) extractNested(ctx context.Context, plan itemPlan) (int, error) {
	logger := logging.WithContext(ctx, e.logger)
	failed := map[string]struct{}{}
	failures := 0

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		files, err := fileutil.ListFiles(plan.inbound)
		if err != nil {
			return failures, services.Wrap(services.ErrRelocation, "nested", "scan inbound", plan.inbound, err)
		}
		if len(files) == 0 {
			break
		}

		attempted := 0
		consumed := map[string]struct{}{}
		for i := 0; i < len(files); i++ {
			path := files[i]
			if _, ok := consumed[path]; ok {
				continue
			}
			if _, ok := failed[path]; ok {
				continue
			}
			format := e.sniffer.Classify(path)
			if format == archive.Unknown {
				continue
			}
			attempted++

			parts := []string{path}
			if archive.IsMultipart(path) {
				parts, err = archive.CollectFragments(path)
				if err != nil {
					failures++
					failed[path] = struct{}{}
					logger.Warn("failed to collect fragments", logging.String("archive", path), logging.Error(err))
					continue
				}
			}
			for _, p := range parts {
				consumed[p] = struct{}{}
			}

			unit := archive.Unit{Path: parts[0], Format: format, Parts: parts, Password: plan.password}
			logger.Info("extracting nested archive",
				logging.String("archive", unit.Path),
				logging.String("format", format.String()),
				logging.Int("parts", len(parts)),
				logging.Int("pass", pass),
			)
			if err := e.extractor.Extract(ctx, unit, plan.outbound); err != nil {
				failures++
				for _, p := range parts {
					failed[p] = struct{}{}
				}
				logging.WarnWithContext(logger, "nested archive failed", "nested_unit_failed",
					logging.String("archive", unit.Path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "archive left in inbound staging; its content is missing from the target"),
				)
				continue
			}
			for _, p := range parts {
				if err := fileutil.RemovePath(p); err != nil {
					failed[p] = struct{}{}
					logger.Warn("failed to remove consumed fragment", logging.String("path", p), logging.Error(err))
				}
			}
			if _, err := e.relocateToInbound(plan.outbound, plan.inbound); err != nil {
				return failures, err
			}
		}

		if attempted == 0 {
			logger.Debug("no further archives in inbound staging", logging.Int("pass", pass))
			break
		}
	}
	return failures, nil
}
