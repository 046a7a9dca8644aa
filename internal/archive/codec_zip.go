package archive

import (
	"context"
	"errors"

	"github.com/klauspost/compress/zstd"
	"github.com/yeka/zip"
)

func init() {
	// Deflate and Store come built in; zstd entries are written by WinZip and 7-Zip.
	zip.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	zip.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())
}

// ZipCodec extracts zip archives, including ZipCrypto and AES encrypted entries.
type ZipCodec struct{}

func (ZipCodec) Extract(ctx context.Context, path, destDir, password string) error {
	w := entryWriter{format: Zip, archive: path, destDir: destDir}

	r, err := zip.OpenReader(path)
	if err != nil {
		return zipFailure(w, "", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := w.mkdir(f.Name); err != nil {
				return err
			}
			continue
		}
		if f.IsEncrypted() {
			if password == "" {
				return w.fail(KindWrongPassword, f.Name, errors.New("entry is encrypted and no password is set"))
			}
			f.SetPassword(password)
		}
		rc, err := f.Open()
		if err != nil {
			return zipFailure(w, f.Name, err)
		}
		err = w.writeFile(f.Name, f.Mode(), rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// zipFailure prefers the zip package sentinels over message matching.
func zipFailure(w entryWriter, entry string, err error) error {
	switch {
	case errors.Is(err, zip.ErrAlgorithm):
		return w.fail(KindUnsupportedMethod, entry, err)
	case errors.Is(err, zip.ErrChecksum), errors.Is(err, zip.ErrFormat):
		return w.fail(KindCorruptArchive, entry, err)
	}
	return w.codecFailure(entry, err)
}
