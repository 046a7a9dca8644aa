package unpack

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"decant/internal/archive"
	"decant/internal/fileutil"
	"decant/internal/logging"
	"decant/internal/naming"
	"decant/internal/services"
)

// CollectWorkItems lists the top-level entries of the source root. Entries
// whose source path or identity key is already in the Ledger, and whose
// completion hints are satisfied, are returned as skipped. Files sharing an
// identity key are merged into one work item.
func (e *Engine) CollectWorkItems(ctx context.Context) (Collection, error) {
	ctx = services.WithStage(ctx, "collect")
	logger := logging.WithContext(ctx, e.logger)

	entries, err := os.ReadDir(e.svc.SourceDir)
	if err != nil {
		return Collection{}, services.Wrap(services.ErrNotFound, "collect", "read source", e.svc.SourceDir, err)
	}

	var result Collection
	index := map[string]int{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		path := filepath.Join(e.svc.SourceDir, entry.Name())
		key := naming.IdentityKey(entry.Name(), entry.IsDir())
		if key == "" {
			logger.Debug("ignoring source entry without identity key", logging.String("path", path))
			continue
		}

		done, err := e.alreadyProcessed(ctx, key, path)
		if err != nil {
			return result, err
		}
		if done {
			logger.Info("skipping already processed item",
				logging.String("source", path),
				logging.String(logging.FieldItemKey, key),
				logging.String(logging.FieldEventType, "item_skipped"),
			)
			result.Skipped = append(result.Skipped, WorkItem{Key: key, SourcePath: path, IsDir: entry.IsDir()})
			continue
		}

		files := []string{path}
		if entry.IsDir() {
			files, err = fileutil.ListFiles(path)
			if err != nil {
				logging.WarnWithContext(logger, "failed to list source directory", "source_list_failed",
					logging.String("source", path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "item skipped this run"),
				)
				continue
			}
		} else if !entry.Type().IsRegular() {
			continue
		}

		if i, ok := index[key]; ok {
			logger.Debug("merging source entry into existing item",
				logging.String("source", path),
				logging.String(logging.FieldItemKey, key),
			)
			result.Pending[i].Files = append(result.Pending[i].Files, files...)
			continue
		}
		index[key] = len(result.Pending)
		result.Pending = append(result.Pending, WorkItem{
			Key:        key,
			SourcePath: path,
			IsDir:      entry.IsDir(),
			Files:      files,
		})
	}

	logger.Info("collected work items",
		logging.Int("pending", len(result.Pending)),
		logging.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (e *Engine) alreadyProcessed(ctx context.Context, key, path string) (bool, error) {
	rec, err := e.history.HistoryBySourcePath(ctx, path)
	if err != nil {
		return false, err
	}
	if rec == nil {
		rec, err = e.history.HistoryByKey(ctx, key)
		if err != nil {
			return false, err
		}
	}
	if rec == nil {
		return false, nil
	}
	return e.isComplete(ctx, key)
}

// groupUnits turns the item's files into archive units. Fragments sharing a
// multi-part base name in one directory form a single unit whose format is
// decided by its first part in sorted order. Every other file is a unit of its
// own, so sidecars and distinct archives with dotted names are never folded
// into a neighbour.
func (e *Engine) groupUnits(ctx context.Context, item WorkItem, password string) []archive.Unit {
	files := append([]string(nil), item.Files...)
	sort.Strings(files)

	var units []archive.Unit
	index := map[string]int{}
	for _, file := range files {
		if base, ok := archive.SplitPartName(file); ok {
			group := filepath.Join(filepath.Dir(file), strings.ToLower(base))
			if i, seen := index[group]; seen {
				units[i].Parts = append(units[i].Parts, file)
				continue
			}
			index[group] = len(units)
		}
		units = append(units, archive.Unit{
			Path:     file,
			Format:   e.sniffer.Classify(file),
			Parts:    []string{file},
			Password: password,
		})
	}

	for _, unit := range units {
		if unit.Format != archive.Unknown && archive.MixedPartWidths(unit.Parts) {
			logging.WarnWithContext(logging.WithContext(ctx, e.logger), "multi-part numbering is not zero padded", "unpadded_parts",
				logging.String("archive", unit.Path),
				logging.Int("parts", len(unit.Parts)),
				logging.String(logging.FieldImpact, "fragments may be merged out of order"),
				logging.String(logging.FieldErrorHint, "rename parts with zero-padded numbers"),
			)
		}
	}
	return units
}

// stagedPath maps a source file to its location under outbound, keeping its
// path relative to the top-level source entry that contains it.
func (e *Engine) stagedPath(file, outbound string) string {
	rel, err := filepath.Rel(e.svc.SourceDir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Join(outbound, filepath.Base(file))
	}
	if _, rest, ok := strings.Cut(rel, string(filepath.Separator)); ok {
		rel = rest
	}
	return filepath.Join(outbound, rel)
}

// isComplete applies the completion hints of key. Services that do not
// require every resolution treat any Ledger record as complete.
func (e *Engine) isComplete(ctx context.Context, key string) (bool, error) {
	if !e.svc.RequireAllResolutions {
		return true, nil
	}
	meta, err := e.metadata.LookupMetadata(ctx, key)
	if err != nil {
		return false, err
	}
	folder := naming.FolderName(key, meta.DisplayTitle())
	entries, err := os.ReadDir(filepath.Join(e.svc.TargetDir, folder))
	if err != nil {
		return false, nil
	}
	hints := naming.ResolutionHints(folder)
	if len(hints) <= 1 {
		return true, nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	missing := naming.MissingResolutions(hints, names)
	if len(missing) > 0 {
		logging.WithContext(ctx, e.logger).Info("resolutions still missing",
			logging.String(logging.FieldItemKey, key),
			logging.String("missing", strings.Join(missing, ",")),
		)
		return false, nil
	}
	return true, nil
}
