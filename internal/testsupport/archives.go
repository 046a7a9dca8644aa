package testsupport

import (
	"bytes"
	"io"
	"path/filepath"
	"sort"
	"testing"

	"github.com/yeka/zip"
)

// ZipBytes builds an in-memory zip holding entries (name -> content). A
// non-empty password AES-256 encrypts every entry.
func ZipBytes(t testing.TB, entries map[string][]byte, password string) []byte {
	t.Helper()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		var (
			w   io.Writer
			err error
		)
		if password != "" {
			w, err = zw.Encrypt(name, password, zip.AES256Encryption)
		} else {
			w, err = zw.Create(name)
		}
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes a zip built by ZipBytes to path.
func WriteZip(t testing.TB, path string, entries map[string][]byte, password string) {
	t.Helper()
	WriteBytes(t, path, ZipBytes(t, entries, password))
}

// WriteSplit writes data as n byte-split volumes next to each other, named
// base.001, base.002, and so on. It returns the volume paths in order.
func WriteSplit(t testing.TB, base string, data []byte, n int) []string {
	t.Helper()
	if n < 2 {
		t.Fatalf("WriteSplit needs at least two volumes, got %d", n)
	}
	size := (len(data) + n - 1) / n
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		start := min(i*size, len(data))
		end := min(start+size, len(data))
		path := base + "." + pad3(i+1)
		WriteBytes(t, filepath.Clean(path), data[start:end])
		paths = append(paths, path)
	}
	return paths
}

func pad3(n int) string {
	digits := []byte{'0', '0', '0'}
	for i := 2; i >= 0 && n > 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits)
}
