package archive

import (
	"context"
	"errors"
	"io"

	"github.com/nwaples/rardecode/v2"
)

// RarCodec extracts rar archives. Volumes named name.partNNN.rar are followed
// from the first part by the decoder.
type RarCodec struct{}

func (RarCodec) Extract(ctx context.Context, path, destDir, password string) error {
	w := entryWriter{format: Rar, archive: path, destDir: destDir}

	var opts []rardecode.Option
	if password != "" {
		opts = append(opts, rardecode.Password(password))
	}
	r, err := rardecode.OpenReader(path, opts...)
	if err != nil {
		return w.codecFailure("", err)
	}
	defer r.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		h, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return w.codecFailure("", err)
		}
		if h.IsDir {
			if err := w.mkdir(h.Name); err != nil {
				return err
			}
			continue
		}
		if err := w.writeFile(h.Name, h.Mode(), r); err != nil {
			return err
		}
	}
}
