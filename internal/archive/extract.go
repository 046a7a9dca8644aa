package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"decant/internal/fileutil"
	"decant/internal/logging"
)

// Codec fully decompresses one archive file into destDir.
type Codec interface {
	Extract(ctx context.Context, path, destDir, password string) error
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCodec registers (or replaces) the codec used for a format.
func WithCodec(format Format, codec Codec) Option {
	return func(e *Extractor) {
		if codec == nil {
			delete(e.codecs, format)
			return
		}
		e.codecs[format] = codec
	}
}

// WithLogger sets the logger used for fallback and merge diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Extractor dispatches units to per-format codecs.
type Extractor struct {
	codecs map[Format]Codec
	logger *slog.Logger
}

// NewExtractor returns an Extractor with the 7z, zip, and rar codecs registered.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		codecs: map[Format]Codec{
			SevenZip: SevenZipCodec{},
			Zip:      ZipCodec{},
			Rar:      RarCodec{},
		},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supports reports whether a codec is registered for format.
func (e *Extractor) Supports(format Format) bool {
	_, ok := e.codecs[format]
	return ok
}

// Extract unpacks unit into destDir. The first fragment is tried directly; for
// multi-part units a failed direct attempt is retried against a temporary
// file holding every fragment concatenated in order. The temporary file is
// always removed.
func (e *Extractor) Extract(ctx context.Context, unit Unit, destDir string) error {
	codec, ok := e.codecs[unit.Format]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, unit.Format)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return &ExtractError{Kind: KindWriteFailure, Format: unit.Format, Path: destDir, Err: err}
	}

	parts := unit.Parts
	if len(parts) == 0 {
		parts = []string{unit.Path}
	}
	logger := logging.WithContext(ctx, e.logger)

	err := codec.Extract(ctx, parts[0], destDir, unit.Password)
	if err == nil {
		logger.Debug("archive extracted",
			logging.String("archive", parts[0]),
			logging.String("format", unit.Format.String()),
		)
		return nil
	}
	if len(parts) == 1 || ctx.Err() != nil {
		return err
	}

	logging.WarnWithContext(logger, "direct extraction failed; merging fragments", "extract_merge_fallback",
		logging.String("archive", parts[0]),
		logging.Int("parts", len(parts)),
		logging.Error(err),
		logging.String(logging.FieldImpact, "fragments are concatenated into a temporary file"),
		logging.String(logging.FieldErrorHint, "a failure after merging usually means a missing or damaged part"),
	)
	return e.extractMerged(ctx, codec, unit, parts, destDir)
}

func (e *Extractor) extractMerged(ctx context.Context, codec Codec, unit Unit, parts []string, destDir string) error {
	logger := logging.WithContext(ctx, e.logger)
	scratch := filepath.Dir(filepath.Clean(destDir))
	tmp, err := os.CreateTemp(scratch, "merged-*"+filepath.Ext(parts[0]))
	if err != nil {
		return &ExtractError{Kind: KindMergeIO, Format: unit.Format, Path: parts[0], Err: err}
	}
	merged := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err := os.Remove(merged); err != nil && !os.IsNotExist(err) {
			logging.WarnWithContext(logger, "merged file cleanup failed", "merge_cleanup_failed",
				logging.String("path", merged),
				logging.Error(err),
				logging.String(logging.FieldImpact, "temporary file left in staging until the next run"),
			)
		}
	}()

	size, err := fileutil.MergeFiles(merged, parts)
	if err != nil {
		return &ExtractError{Kind: KindMergeIO, Format: unit.Format, Path: parts[0], Err: err}
	}
	logger.Info("fragments merged",
		logging.String("archive", parts[0]),
		logging.Int("parts", len(parts)),
		logging.String("size", humanize.Bytes(uint64(size))),
	)

	if err := codec.Extract(ctx, merged, destDir, unit.Password); err != nil {
		return err
	}
	logger.Debug("merged archive extracted", logging.String("archive", parts[0]))
	return nil
}
