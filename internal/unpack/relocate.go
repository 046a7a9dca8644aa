package unpack

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"decant/internal/fileutil"
	"decant/internal/logging"
	"decant/internal/services"
)

// finalize moves the outbound tree under the target root and returns the
// path recorded in history. An empty outbound tree returns "".
//
// With SkipParentLevels N > 0 the first N path segments are dropped and every
// remaining entry lands directly under the target root; the target root is
// recorded. With N = 0 the tree replaces target/<folder> wholesale.
func (e *Engine) finalize(ctx context.Context, plan itemPlan) (string, error) {
	logger := logging.WithContext(ctx, e.logger)
	if !fileutil.ContainsFiles(plan.outbound) {
		logging.WarnWithContext(logger, "nothing to relocate", "relocate_empty",
			logging.String("outbound", plan.outbound),
			logging.String(logging.FieldImpact, "no history recorded; item is retried next run"),
		)
		return "", nil
	}
	size := treeSize(plan.outbound)

	levels := e.svc.Move.SkipParentLevels
	if levels <= 0 {
		dst := filepath.Join(e.svc.TargetDir, plan.folder)
		replaced := fileutil.Exists(dst)
		if err := fileutil.MoveReplace(plan.outbound, dst); err != nil {
			return "", services.Wrap(services.ErrRelocation, "relocate", "move item folder", dst, err)
		}
		if replaced {
			logger.Info("replaced existing target folder",
				logging.String("target", dst),
				logging.String(logging.FieldEventType, "target_replaced"),
			)
		}
		logger.Info("relocated item",
			logging.String("target", dst),
			logging.String("size", humanize.Bytes(uint64(size))),
		)
		return dst, nil
	}

	if err := os.MkdirAll(e.svc.TargetDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrRelocation, "relocate", "create target root", e.svc.TargetDir, err)
	}
	moved, err := e.placeStripped(plan.outbound, 1, levels)
	if err != nil {
		return "", err
	}
	logger.Info("relocated item",
		logging.String("target", e.svc.TargetDir),
		logging.Int("entries", moved),
		logging.Int("skip_parent_levels", levels),
		logging.String("size", humanize.Bytes(uint64(size))),
	)
	return e.svc.TargetDir, nil
}

// placeStripped walks dir, descending through directories at depth <= levels,
// and moves every other entry to the target root under its own name.
func (e *Engine) placeStripped(dir string, depth, levels int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, services.Wrap(services.ErrRelocation, "relocate", "read staged tree", dir, err)
	}
	moved := 0
	for _, entry := range entries {
		src := filepath.Join(dir, entry.Name())
		if entry.IsDir() && depth <= levels {
			n, err := e.placeStripped(src, depth+1, levels)
			moved += n
			if err != nil {
				return moved, err
			}
			continue
		}
		dst := filepath.Join(e.svc.TargetDir, entry.Name())
		if err := fileutil.MoveReplace(src, dst); err != nil {
			return moved, services.Wrap(services.ErrRelocation, "relocate", "move entry", dst, err)
		}
		moved++
	}
	return moved, nil
}

func treeSize(root string) int64 {
	var total int64
	files, _ := fileutil.ListFiles(root)
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			total += info.Size()
		}
	}
	return total
}
