package naming

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var folderReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
)

// IdentityKey derives the ledger key of a top-level source entry. A directory
// is keyed by its full name; a file by the part of its stem before the first
// underscore, so "1234_title.zip" and "1234_extras.7z" share key "1234".
func IdentityKey(name string, isDir bool) string {
	base := filepath.Base(name)
	if isDir {
		return base
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	key, _, _ := strings.Cut(stem, "_")
	return key
}

// FolderName builds the target folder for key: "[key] title" when a title is
// known, otherwise the bare key. Path separators become underscores, one
// trailing dot is dropped, and the result is NFC normalized.
func FolderName(key, title string) string {
	name := key
	if t := strings.TrimSpace(title); t != "" {
		name = "[" + key + "] " + t
	}
	name = folderReplacer.Replace(name)
	name = strings.TrimSuffix(name, ".")
	return norm.NFC.String(name)
}

// IsValidTargetName reports whether a target directory entry looks like one
// decant produced. Names with neither '[' nor ']' are strays.
func IsValidTargetName(name string) bool {
	return strings.ContainsAny(name, "[]")
}

var resolutionMarkers = []struct {
	marker string
	label  string
}{
	{"1k", "1080"},
	{"1K", "1080"},
	{"1080", "1080"},
	{"2k", "2k"},
	{"2K", "2k"},
	{"4k", "4k"},
	{"4K", "4k"},
}

// ResolutionHints lists the canonical resolution labels named anywhere in
// folder, sorted and without duplicates.
func ResolutionHints(folder string) []string {
	seen := map[string]struct{}{}
	for _, m := range resolutionMarkers {
		if strings.Contains(folder, m.marker) {
			seen[m.label] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for label := range seen {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// MissingResolutions returns the labels in required that no entry name contains.
func MissingResolutions(required []string, entries []string) []string {
	var missing []string
	for _, label := range required {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry, label) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, label)
		}
	}
	return missing
}
