package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	dottedPartPattern = regexp.MustCompile(`(?i)^(.+)\.(?:7z|zip)\.(\d+)$`)
	rarPartPattern    = regexp.MustCompile(`(?i)^(.+)\.part(\d+)\.rar$`)
)

func splitPart(name string) (base, number string, ok bool) {
	if m := dottedPartPattern.FindStringSubmatch(name); m != nil {
		return m[1], m[2], true
	}
	if m := rarPartPattern.FindStringSubmatch(name); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// SplitPartName strips a recognized multi-part suffix from a file name and
// returns the archive base name.
func SplitPartName(name string) (string, bool) {
	base, _, ok := splitPart(filepath.Base(name))
	return base, ok
}

// IsMultipart reports whether name follows one of the multi-part naming
// conventions.
func IsMultipart(name string) bool {
	_, ok := SplitPartName(name)
	return ok
}

// CollectFragments returns every sibling fragment of the archive path belongs
// to, sorted by name. Only the directory containing path is scanned. A path
// that is not a fragment collects as itself.
func CollectFragments(path string) ([]string, error) {
	base, ok := SplitPartName(path)
	if !ok {
		return []string{path}, nil
	}
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fragment directory: %w", err)
	}
	var parts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		other, ok := SplitPartName(entry.Name())
		if !ok || !strings.EqualFold(other, base) {
			continue
		}
		parts = append(parts, filepath.Join(dir, entry.Name()))
	}
	if len(parts) == 0 {
		return []string{path}, nil
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return strings.ToLower(parts[i]) < strings.ToLower(parts[j])
	})
	return parts, nil
}

// MixedPartWidths reports whether the part numbers in parts use different
// digit counts. Name ordering only matches part ordering for zero-padded
// numbers, so mixed widths mean the fragments may be merged out of order.
func MixedPartWidths(parts []string) bool {
	width := -1
	for _, p := range parts {
		_, num, ok := splitPart(filepath.Base(p))
		if !ok {
			continue
		}
		if width >= 0 && len(num) != width {
			return true
		}
		width = len(num)
	}
	return false
}
