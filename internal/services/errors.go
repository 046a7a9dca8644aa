package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtraction        = errors.New("extraction error")
	ErrRelocation        = errors.New("relocation error")
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrNotFound          = errors.New("not found")
	ErrTransient         = errors.New("transient failure")
)

// Wrap tags err with marker for classification and prefixes it with the
// non-empty parts of stage, operation and message. A nil marker means
// ErrTransient. err may be nil.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinNonEmpty(": ", stage, operation, message)
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// IsFatal reports whether err should stop the whole service run rather than
// only the current work item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrLedgerUnavailable) || errors.Is(err, ErrConfiguration)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
