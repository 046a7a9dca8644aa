package archive

import (
	"context"

	"github.com/bodgit/sevenzip"
)

// SevenZipCodec extracts 7z archives. Opening the first volume of a split
// archive (name.7z.001) follows the remaining volumes automatically.
type SevenZipCodec struct{}

func (SevenZipCodec) Extract(ctx context.Context, path, destDir, password string) error {
	w := entryWriter{format: SevenZip, archive: path, destDir: destDir}

	r, err := sevenzip.OpenReaderWithPassword(path, password)
	if err != nil {
		return w.codecFailure("", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		info := f.FileInfo()
		if info.IsDir() {
			if err := w.mkdir(f.Name); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return w.codecFailure(f.Name, err)
		}
		err = w.writeFile(f.Name, info.Mode(), rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
