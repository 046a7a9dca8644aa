package preflight

import (
	"errors"
	"fmt"
	"strings"

	"decant/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunService checks the directories one service touches. The source root
// must already exist; staging and target roots are created when missing.
func RunService(svc config.Service) []Result {
	return []Result{
		CheckDirectoryAccess("Source directory", svc.SourceDir),
		EnsureDirectory("Inbound staging", svc.UnzipTempDir),
		EnsureDirectory("Outbound staging", svc.TargetTempDir),
		EnsureDirectory("Target directory", svc.TargetDir),
	}
}

// Err folds failed results into one error, or returns nil when all passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.New(strings.Join(failed, "; "))
}
