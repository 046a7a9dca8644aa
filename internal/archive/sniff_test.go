package archive

import (
	"os"
	"path/filepath"
	"testing"

	"decant/internal/logging"
)

func TestClassifyBytes(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
		want   Format
	}{
		{"seven zip", []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C, 0x00, 0x04}, SevenZip},
		{"zip local header", []byte("PK\x03\x04rest"), Zip},
		{"rar4", []byte("Rar!\x1a\x07\x00"), Rar},
		{"rar5", []byte("Rar!\x1a\x07\x01\x00"), Rar},
		{"zip empty archive", []byte("PK\x05\x06"), Unknown},
		{"truncated seven zip", []byte{0x37, 0x7A, 0xBC}, Unknown},
		{"plain text", []byte("hello world"), Unknown},
		{"empty", nil, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyBytes(tt.prefix); got != tt.want {
				t.Fatalf("ClassifyBytes(%q) = %s, want %s", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestClassifyFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	// Extensions are deliberately misleading: only content decides.
	zipPath := write("movie.rar", []byte("PK\x03\x04\x14\x00\x00\x00"))
	rarPath := write("movie.zip", []byte("Rar!\x1a\x07\x00"))
	emptyPath := write("empty.7z", nil)
	textPath := write("notes.txt", []byte("not an archive at all, just text"))

	sniffer := NewSniffer(logging.NewNop())
	cases := []struct {
		path string
		want Format
	}{
		{zipPath, Zip},
		{rarPath, Rar},
		{emptyPath, Unknown},
		{textPath, Unknown},
		{filepath.Join(dir, "missing"), Unknown},
		{dir, Unknown},
	}
	for _, tc := range cases {
		if got := sniffer.Classify(tc.path); got != tc.want {
			t.Errorf("Classify(%s) = %s, want %s", filepath.Base(tc.path), got, tc.want)
		}
		if got := Classify(tc.path); got != tc.want {
			t.Errorf("package Classify(%s) = %s, want %s", filepath.Base(tc.path), got, tc.want)
		}
	}
}

func TestFormatString(t *testing.T) {
	for format, want := range map[Format]string{SevenZip: "7z", Zip: "zip", Rar: "rar", Unknown: "unknown", Format(42): "unknown"} {
		if got := format.String(); got != want {
			t.Errorf("Format(%d).String() = %q, want %q", int(format), got, want)
		}
	}
}
