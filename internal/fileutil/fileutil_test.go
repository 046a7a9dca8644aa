package fileutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestCopyFilePreservesModeAndTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("data"), 0o755); err != nil {
		t.Fatal(err)
	}
	stamp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Fatalf("expected executable bits, got %o", info.Mode().Perm())
	}
	if !info.ModTime().Equal(stamp) {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), stamp)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	content := bytes.Repeat([]byte("x"), 4096)
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("content mismatch")
	}
}

func TestMergeFilesConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()
	var parts []string
	var want bytes.Buffer
	for i, chunk := range []string{"alpha-", "bravo-", "charlie"} {
		p := filepath.Join(dir, "part"+string(rune('1'+i)))
		if err := os.WriteFile(p, []byte(chunk), 0o644); err != nil {
			t.Fatal(err)
		}
		parts = append(parts, p)
		want.WriteString(chunk)
	}
	// Larger than one chunk so the buffer is reused across reads.
	big := filepath.Join(dir, "part4")
	bigData := bytes.Repeat([]byte{0xAB}, MergeChunkSize+17)
	if err := os.WriteFile(big, bigData, 0o644); err != nil {
		t.Fatal(err)
	}
	parts = append(parts, big)
	want.Write(bigData)

	dst := filepath.Join(dir, "merged")
	n, err := MergeFiles(dst, parts)
	if err != nil {
		t.Fatalf("MergeFiles: %v", err)
	}
	if n != int64(want.Len()) {
		t.Fatalf("wrote %d bytes, want %d", n, want.Len())
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Fatal("merged content mismatch")
	}
}

func TestMergeFilesMissingPart(t *testing.T) {
	dir := t.TempDir()
	_, err := MergeFiles(filepath.Join(dir, "merged"), []string{filepath.Join(dir, "absent")})
	if err == nil || !strings.Contains(err.Error(), "open part") {
		t.Fatalf("expected open part error, got %v", err)
	}
}

func TestMoveReplaceOverwritesDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "out", "dst")
	if err := os.MkdirAll(filepath.Join(src, "inner"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "inner", "new.txt"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dst, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := MoveReplace(src, dst); err != nil {
		t.Fatalf("MoveReplace: %v", err)
	}
	if Exists(src) {
		t.Fatal("source should be gone")
	}
	if Exists(stale) {
		t.Fatal("existing destination content should be replaced, not merged")
	}
	if got, err := os.ReadFile(filepath.Join(dst, "inner", "new.txt")); err != nil || string(got) != "new" {
		t.Fatalf("moved file missing: %q %v", got, err)
	}
}

func TestMoveReplaceFileOverDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "target")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dst, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := MoveReplace(src, dst); err != nil {
		t.Fatalf("MoveReplace: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil || info.IsDir() {
		t.Fatalf("expected regular file at destination, got %v %v", info, err)
	}
}

func TestMoveReplaceMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := MoveReplace(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestIsCrossDevice(t *testing.T) {
	link := &os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EXDEV}
	if !isCrossDevice(link) {
		t.Fatal("expected EXDEV link error to be cross-device")
	}
	if isCrossDevice(errors.New("boom")) {
		t.Fatal("plain error is not cross-device")
	}
}

func TestCopyTreeCopiesNestedFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(filepath.Join(src, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a", "b", "c.txt"), []byte("c"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "dst")
	if err := copyTree(src, dst); err != nil {
		t.Fatalf("copyTree: %v", err)
	}
	if got, err := os.ReadFile(filepath.Join(dst, "a", "b", "c.txt")); err != nil || string(got) != "c" {
		t.Fatalf("copied file missing: %q %v", got, err)
	}
}

func TestListFilesAndContainsFiles(t *testing.T) {
	dir := t.TempDir()
	if ContainsFiles(dir) {
		t.Fatal("empty dir should contain no files")
	}
	if err := os.MkdirAll(filepath.Join(dir, "x", "y"), 0o755); err != nil {
		t.Fatal(err)
	}
	if ContainsFiles(dir) {
		t.Fatal("directories alone are not files")
	}
	for _, p := range []string{"b.txt", "x/a.txt", "x/y/z.bin"} {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.WriteFile(full, []byte(p), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "x", "a.txt"),
		filepath.Join(dir, "x", "y", "z.bin"),
	}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Fatalf("ListFiles = %v, want %v", files, want)
	}
	if !ContainsFiles(dir) {
		t.Fatal("expected files")
	}

	missing, err := ListFiles(filepath.Join(dir, "missing"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing root should list nothing, got %v %v", missing, err)
	}
}

func TestResetDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch")
	if err := os.MkdirAll(filepath.Join(dir, "old"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := ResetDir(dir); err != nil {
		t.Fatalf("ResetDir: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}
