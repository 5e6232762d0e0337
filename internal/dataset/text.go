package dataset

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewTextReader strips a leading UTF-8 byte order mark and replaces invalid
// UTF-8 with U+FFFD. Files saved by spreadsheet tools on Windows carry the
// mark, which encoding/json rejects.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

type readCloser struct {
	io.Reader
	io.Closer
}
