package archive

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"

	"decant/internal/logging"
)

// HeaderSize is the number of leading bytes read for classification.
const HeaderSize = 20

var signatures = []struct {
	format Format
	magic  []byte
}{
	{SevenZip, []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}},
	{Zip, []byte{0x50, 0x4B, 0x03}},
	{Rar, []byte{0x52, 0x61, 0x72}},
}

// ClassifyBytes matches a header prefix against the signature table. The
// first matching signature wins.
func ClassifyBytes(prefix []byte) Format {
	for _, sig := range signatures {
		if bytes.HasPrefix(prefix, sig.magic) {
			return sig.format
		}
	}
	return Unknown
}

// Sniffer classifies files by content.
type Sniffer struct {
	logger *slog.Logger
}

// NewSniffer returns a Sniffer that reports unreadable headers at debug level.
func NewSniffer(logger *slog.Logger) *Sniffer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sniffer{logger: logger}
}

// Classify reads the header of path and returns its format. Any read failure
// yields Unknown.
func (s *Sniffer) Classify(path string) Format {
	header, err := readHeader(path)
	if err != nil {
		if s != nil && s.logger != nil {
			s.logger.Debug("header unreadable; treating as plain file",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "header_unreadable"),
			)
		}
		return Unknown
	}
	return ClassifyBytes(header)
}

// Classify is a convenience wrapper around a Sniffer without logging.
func Classify(path string) Format {
	return (&Sniffer{}).Classify(path)
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}
