package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var errUnsafePath = errors.New("entry path escapes destination")

// safeJoin resolves an archive entry name beneath destDir, rejecting absolute
// names and names that climb out with "..".
func safeJoin(destDir, name string) (string, error) {
	normalized := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(normalized, "/") || filepath.VolumeName(normalized) != "" {
		return "", errUnsafePath
	}
	cleaned := filepath.Clean(filepath.FromSlash(normalized))
	if cleaned == "." {
		return destDir, nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errUnsafePath
	}
	return filepath.Join(destDir, cleaned), nil
}

// entryWriter materializes archive entries under destDir and turns failures
// into ExtractErrors tagged with the archive being read.
type entryWriter struct {
	format  Format
	archive string
	destDir string
}

func (w entryWriter) fail(kind Kind, entry string, err error) error {
	return &ExtractError{Kind: kind, Format: w.format, Path: w.archive, Entry: entry, Err: err}
}

func (w entryWriter) codecFailure(entry string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return w.fail(classifyCodecError(err), entry, err)
}

func (w entryWriter) mkdir(name string) error {
	target, err := safeJoin(w.destDir, name)
	if err != nil {
		return w.fail(KindCorruptArchive, name, err)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return w.fail(KindWriteFailure, name, err)
	}
	return nil
}

func (w entryWriter) writeFile(name string, mode fs.FileMode, r io.Reader) error {
	target, err := safeJoin(w.destDir, name)
	if err != nil {
		return w.fail(KindCorruptArchive, name, err)
	}
	if target == w.destDir {
		return w.fail(KindCorruptArchive, name, fmt.Errorf("entry has no file name"))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return w.fail(KindWriteFailure, name, err)
	}
	perm := mode.Perm() | 0o600
	if mode.Perm() == 0 {
		perm = 0o644
	}
	// Replace rather than truncate so a read-only leftover cannot block the write.
	_ = os.Remove(target)
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return w.fail(KindWriteFailure, name, err)
	}
	src := &readRecorder{r: r}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		if src.err != nil {
			return w.codecFailure(name, src.err)
		}
		return w.fail(KindWriteFailure, name, err)
	}
	if err := out.Close(); err != nil {
		return w.fail(KindWriteFailure, name, err)
	}
	return nil
}

// readRecorder remembers the last non-EOF read error so copy failures can be
// attributed to the codec rather than the filesystem.
type readRecorder struct {
	r   io.Reader
	err error
}

func (r *readRecorder) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		r.err = err
	}
	return n, err
}
