// Package file implements local filesystem data sources: single files with
// transparent gzip and charset decoding, and recursive directory listings.
package file

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"clinetl/internal/datasource"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct {
	path     string
	encoding string
}

var _ datasource.Source = (*Local)(nil)

// NewLocal returns a new Local data source bound to the provided filesystem
// path. encoding names the source charset ("" or "utf-8", "latin1",
// "windows-1252", "utf-16"); see Decoder.
func NewLocal(path, encoding string) *Local { return &Local{path: path, encoding: encoding} }

// Open opens the configured path for reading and returns a UTF-8 stream.
//
// Behavior:
//   - A pre-canceled context returns the context error without touching the
//     filesystem.
//   - Gzip input (detected by magic bytes) is decompressed.
//   - The stream is decoded from the configured charset to UTF-8 and a
//     leading byte-order mark is dropped.
//   - Filesystem errors are wrapped with the path while still permitting
//     errors.Is checks (e.g., errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	dec, err := Decoder(l.encoding)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}

	br := bufio.NewReaderSize(f, 256*1024)
	var r io.Reader = br
	closers := []io.Closer{f}
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gunzip %s: %w", l.path, err)
		}
		r = zr
		closers = append([]io.Closer{zr}, closers...)
	}

	return &readCloser{
		Reader:  transform.NewReader(r, unicode.BOMOverride(dec.NewDecoder())),
		closers: closers,
	}, nil
}

// Decoder resolves a charset name to an encoding. The empty name means UTF-8.
func Decoder(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// readCloser closes every layer of a decoded stream, innermost last.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
