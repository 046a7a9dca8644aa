package unpack

import (
	"context"

	"decant/internal/archive"
	"decant/internal/ledger"
)

// History records which identity keys have been fully processed.
type History interface {
	HistoryByKey(ctx context.Context, key string) (*ledger.HistoryRecord, error)
	HistoryBySourcePath(ctx context.Context, path string) (*ledger.HistoryRecord, error)
	SaveHistory(ctx context.Context, key, sourcePath, targetPath string) error
}

// MetadataSource supplies titles and passwords. A nil result means the key
// has no metadata: the default password applies and the folder is the bare key.
type MetadataSource interface {
	LookupMetadata(ctx context.Context, key string) (*ledger.Metadata, error)
}

// Extractor unpacks one archive unit into destDir.
type Extractor interface {
	Extract(ctx context.Context, unit archive.Unit, destDir string) error
}

// WorkItem is one top-level source entry and every file beneath it.
type WorkItem struct {
	Key        string
	SourcePath string
	IsDir      bool
	Files      []string
}

// Outcome summarizes how a work item finished.
type Outcome int

const (
	// OutcomeSuccess means every unit extracted and the tree was relocated.
	OutcomeSuccess Outcome = iota
	// OutcomePartial means at least one unit failed but relocation completed.
	OutcomePartial
	// OutcomeFailed means relocation failed or nothing was produced.
	OutcomeFailed
	// OutcomeSkipped marks items the Ledger already records as complete.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partial"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Collection is the result of scanning the source root.
type Collection struct {
	Pending []WorkItem
	Skipped []WorkItem
}

// CleanupResult lists what a cleanup pass removed.
type CleanupResult struct {
	SourcesRemoved []string
	TargetsRemoved []string
	Failures       int
}
