package archive

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned when no codec is registered for a unit's format.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// Kind classifies extraction failures.
type Kind int

const (
	KindCodecFailure Kind = iota
	KindWrongPassword
	KindCorruptArchive
	KindUnsupportedMethod
	KindWriteFailure
	KindMergeIO
)

func (k Kind) String() string {
	switch k {
	case KindWrongPassword:
		return "wrong_password"
	case KindCorruptArchive:
		return "corrupt_archive"
	case KindUnsupportedMethod:
		return "unsupported_method"
	case KindWriteFailure:
		return "write_failure"
	case KindMergeIO:
		return "merge_io"
	default:
		return "codec_failure"
	}
}

// ExtractError reports a failed extraction with enough context to log it.
type ExtractError struct {
	Kind   Kind
	Format Format
	Path   string
	Entry  string
	Err    error
}

func (e *ExtractError) Error() string {
	var b strings.Builder
	b.WriteString(e.Format.String())
	b.WriteString(" ")
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Entry != "" {
		fmt.Fprintf(&b, " (entry %s)", e.Entry)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExtractError) Unwrap() error { return e.Err }

// KindOf returns the extraction failure kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var xe *ExtractError
	if errors.As(err, &xe) {
		return xe.Kind, true
	}
	return 0, false
}

// classifyCodecError maps codec library errors onto failure kinds. The codecs
// do not share sentinel values, so the message text is the common ground.
func classifyCodecError(err error) Kind {
	if err == nil {
		return KindCodecFailure
	}
	if kind, ok := KindOf(err); ok {
		return kind
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "password"), strings.Contains(msg, "decrypt"), strings.Contains(msg, "encrypted"):
		return KindWrongPassword
	case strings.Contains(msg, "unsupported"), strings.Contains(msg, "algorithm"), strings.Contains(msg, "unknown method"):
		return KindUnsupportedMethod
	case strings.Contains(msg, "checksum"), strings.Contains(msg, "crc"), strings.Contains(msg, "not a valid"),
		strings.Contains(msg, "corrupt"), strings.Contains(msg, "unexpected eof"), strings.Contains(msg, "format"),
		strings.Contains(msg, "bad "), strings.Contains(msg, "invalid"):
		return KindCorruptArchive
	default:
		return KindCodecFailure
	}
}
