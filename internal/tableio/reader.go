package tableio

// reader.go prepares upload bytes for the parsers.
//
// Registrar exports arrive from Excel on Windows more often than not, so a
// CSV stream goes through two x/text transforms before encoding/csv sees it:
// the UTF-8 BOM is dropped and ill-formed UTF-8 becomes U+FFFD. Every stream
// is counted and capped at the configured size.

import (
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned when an upload exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// CountingReader tracks bytes read and fails once a limit is passed.
// A zero Limit means unlimited.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewCountingReader wraps r. limit <= 0 disables the cap.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, ErrFileTooLarge
	}
	return n, err
}

// textReader strips a leading UTF-8 BOM and replaces invalid UTF-8.
func textReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.ReplaceIllFormed(),
	))
}
