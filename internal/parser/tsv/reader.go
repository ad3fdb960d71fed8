// Package tsv reads tab-separated files in bounded chunks. The first record
// is the header; every following record becomes a row of typed cells aligned
// with it.
//
// The reader is lenient in the way large public annotation dumps require:
// stray quotes are taken literally, short records are padded with nulls,
// surplus fields are dropped, and a record the CSV scanner rejects is reported
// and skipped rather than aborting the stream.
package tsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultChunkSize is the number of rows per chunk when Options.ChunkSize is
// zero.
const DefaultChunkSize = 200_000

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Options configures a Reader. All fields are optional.
type Options struct {
	// ChunkSize bounds the rows held in memory per Next call.
	ChunkSize int

	// NullValues lists the cell texts read as null. Nil selects
	// DefaultNullValues; the empty string is always null.
	NullValues []string

	// IntColumns names the columns whose cells are converted to int64 when
	// they parse as base-10 integers. Cells that do not parse stay strings.
	IntColumns []string

	// OnError is told about records the scanner rejected. It may be nil.
	OnError func(line int, err error)
}

// Reader yields Chunks from a tab-separated stream. It is not safe for
// concurrent use.
type Reader struct {
	cr     *csv.Reader
	header []string
	intCol []bool
	nulls  map[string]struct{}
	size   int
	onErr  func(int, error)
	rows   int
	done   bool
}

// NewReader reads the header from r and returns a Reader positioned at the
// first data record. An input without a header record is an error.
func NewReader(r io.Reader, opt Options) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("tsv: empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("tsv: read header: %w", err)
	}
	header := normalizeHeaders(h)

	size := opt.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	nullValues := opt.NullValues
	if nullValues == nil {
		nullValues = DefaultNullValues
	}
	nulls := make(map[string]struct{}, len(nullValues)+1)
	nulls[""] = struct{}{}
	for _, v := range nullValues {
		nulls[v] = struct{}{}
	}

	intCol := make([]bool, len(header))
	for _, name := range opt.IntColumns {
		for i, h := range header {
			if h == name {
				intCol[i] = true
			}
		}
	}

	return &Reader{
		cr:     cr,
		header: header,
		intCol: intCol,
		nulls:  nulls,
		size:   size,
		onErr:  opt.OnError,
	}, nil
}

// Rows returns the number of data rows emitted so far.
func (r *Reader) Rows() int { return r.rows }

// Next returns the next chunk of at most ChunkSize rows, or io.EOF once the
// input is exhausted. Chunks never come back empty.
func (r *Reader) Next(ctx context.Context) (*Chunk, error) {
	if r.done {
		return nil, io.EOF
	}
	rows := make([][]any, 0, min(r.size, 4096))
	for len(rows) < r.size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.cr.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				if r.onErr != nil {
					r.onErr(pe.StartLine, err)
				}
				continue
			}
			return nil, fmt.Errorf("tsv: read: %w", err)
		}
		rows = append(rows, r.convert(rec))
	}
	if len(rows) == 0 {
		return nil, io.EOF
	}
	r.rows += len(rows)
	return newChunk(r.header, rows), nil
}

// convert turns one record into cells aligned with the header.
func (r *Reader) convert(rec []string) []any {
	row := make([]any, len(r.header))
	for i := range row {
		if i >= len(rec) {
			continue
		}
		v := rec[i]
		if _, null := r.nulls[v]; null {
			continue
		}
		if r.intCol[i] {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				row[i] = n
				continue
			}
		}
		row[i] = v
	}
	return row
}

// normalizeHeaders trims and NFC-normalizes header names, strips a UTF-8 BOM
// from the first one, and suffixes repeated names with ".1", ".2", ...
func normalizeHeaders(h []string) []string {
	out := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		c := norm.NFC.String(strings.TrimSpace(col))
		if n, dup := seen[c]; dup {
			seen[c] = n + 1
			c = c + "." + strconv.Itoa(n+1)
		} else {
			seen[c] = 0
		}
		out[i] = c
	}
	return out
}
