package fileutil

import (
	"fmt"
	"io"
	"os"
)

// MergeChunkSize is the buffer size used when concatenating fragments.
const MergeChunkSize = 1 << 20

// MergeFiles concatenates parts, in the order given, into dst and returns the
// number of bytes written. dst is truncated first.
func MergeFiles(dst string, parts []string) (int64, error) {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create merged file: %w", err)
	}
	defer out.Close()

	buf := make([]byte, MergeChunkSize)
	var total int64
	for _, part := range parts {
		n, err := appendFile(out, part, buf)
		total += n
		if err != nil {
			return total, err
		}
	}
	if err := out.Close(); err != nil {
		return total, fmt.Errorf("close merged file: %w", err)
	}
	return total, nil
}

func appendFile(out io.Writer, path string, buf []byte) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open part %s: %w", path, err)
	}
	defer in.Close()
	n, err := io.CopyBuffer(out, in, buf)
	if err != nil {
		return n, fmt.Errorf("append part %s: %w", path, err)
	}
	return n, nil
}
