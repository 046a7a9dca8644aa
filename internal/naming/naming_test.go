package naming

import (
	"strings"
	"testing"
)

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name  string
		isDir bool
		want  string
	}{
		{"1234_title.zip", false, "1234"},
		{"1234_a_b.part001.rar", false, "1234"},
		{"plain.zip", false, "plain"},
		{"/src/9876_x.7z", false, "9876"},
		{"1234_folder", true, "1234_folder"},
		{"/src/dir.with.dots", true, "dir.with.dots"},
	}
	for _, tt := range tests {
		if got := IdentityKey(tt.name, tt.isDir); got != tt.want {
			t.Errorf("IdentityKey(%q, %v) = %q, want %q", tt.name, tt.isDir, got, tt.want)
		}
	}
}

func TestFolderName(t *testing.T) {
	tests := []struct {
		key, title, want string
	}{
		{"1234", "", "1234"},
		{"1234", "  ", "1234"},
		{"1234", "Title", "[1234] Title"},
		{"1234", "AC/DC Live", "[1234] AC_DC Live"},
		{"1234", `back\slash`, `[1234] back_slash`},
		{"1234", "Ends with dot.", "[1234] Ends with dot"},
		{"1234", "éte", "[1234] éte"},
	}
	for _, tt := range tests {
		if got := FolderName(tt.key, tt.title); got != tt.want {
			t.Errorf("FolderName(%q, %q) = %q, want %q", tt.key, tt.title, got, tt.want)
		}
	}
}

func TestIsValidTargetName(t *testing.T) {
	for name, want := range map[string]bool{
		"[1234] Title": true,
		"weird]":       true,
		"[":            true,
		"1234":         false,
		"stray.txt":    false,
	} {
		if got := IsValidTargetName(name); got != want {
			t.Errorf("IsValidTargetName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestResolutionHints(t *testing.T) {
	tests := []struct {
		folder string
		want   string
	}{
		{"[1] Scene 1080 4K", "1080,4k"},
		{"[1] Scene 1k 1080", "1080"},
		{"[1] Scene 2K", "2k"},
		{"[1] Scene", ""},
	}
	for _, tt := range tests {
		if got := strings.Join(ResolutionHints(tt.folder), ","); got != tt.want {
			t.Errorf("ResolutionHints(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}

func TestMissingResolutions(t *testing.T) {
	got := MissingResolutions([]string{"1080", "4k"}, []string{"scene_1080.mp4", "notes.txt"})
	if len(got) != 1 || got[0] != "4k" {
		t.Fatalf("MissingResolutions = %v, want [4k]", got)
	}
	if got := MissingResolutions([]string{"1080"}, []string{"a_1080p.mp4"}); len(got) != 0 {
		t.Fatalf("expected nothing missing, got %v", got)
	}
}
