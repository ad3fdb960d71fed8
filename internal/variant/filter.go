package variant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"clinetl/internal/datasource/file"
	"clinetl/internal/metrics"
	"clinetl/internal/parser/tsv"
	"clinetl/internal/skiplog"
	"clinetl/internal/storage"
)

// FilterOptions configures FilterTable. Zero values select the defaults.
type FilterOptions struct {
	// Table receives the selected rows. Default FilteredTable.
	Table string
	// Column is matched against Substring. Default ClinicalSignificance.
	Column string
	// Substring must occur in Column, case-sensitively. Default "Pathogenic".
	Substring string
	// MatchAll selects every row whose Column is non-null; Substring is
	// ignored.
	MatchAll bool
	// ChunkSize bounds the rows read per chunk. Default tsv.DefaultChunkSize.
	ChunkSize int
	// Encoding names the source charset for FilterFile. Default UTF-8.
	Encoding string
	// NullValues overrides tsv.DefaultNullValues.
	NullValues []string

	// Job labels metrics. Skips observes skipped chunks and records.
	Job   string
	Skips *skiplog.Recorder
}

func (o FilterOptions) withDefaults() FilterOptions {
	if o.Table == "" {
		o.Table = FilteredTable
	}
	if o.Column == "" {
		o.Column = ColClinicalSignificance
	}
	if o.MatchAll {
		o.Substring = ""
	} else if o.Substring == "" {
		o.Substring = "Pathogenic"
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = tsv.DefaultChunkSize
	}
	return o
}

// FilterFile opens path (plain or gzip) and runs FilterTable over it.
func FilterFile(ctx context.Context, path string, store storage.Store, opt FilterOptions) error {
	rc, err := file.NewLocal(path, opt.Encoding).Open(ctx)
	if err != nil {
		return fmt.Errorf("variant: filter: %w", err)
	}
	defer rc.Close()
	return FilterTable(ctx, rc, store, opt)
}

// FilterTable streams r chunk by chunk and writes the rows whose filter
// column contains the substring to the target table.
//
// Chunks without the filter column are skipped. Only FilteredColumns present
// in the source are kept. The first non-empty selection replaces the table;
// later selections are appended. Nothing is written when no row matches.
func FilterTable(ctx context.Context, r io.Reader, store storage.Store, opt FilterOptions) error {
	opt = opt.withDefaults()

	tr, err := tsv.NewReader(r, tsv.Options{
		ChunkSize:  opt.ChunkSize,
		NullValues: opt.NullValues,
		IntColumns: IntColumns,
		OnError:    recordMalformed(opt.Skips, StageFilter),
	})
	if err != nil {
		return fmt.Errorf("variant: filter: %w", err)
	}

	w := newTableWriter(store, opt.Table, StageFilter, opt.ChunkSize)
	var selected int64
	for n := 0; ; n++ {
		chunk, err := tr.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("variant: filter: %w", err)
		}

		col := chunk.Index(opt.Column)
		if col < 0 {
			opt.Skips.Skip(StageFilter, "missing_filter_column", fmt.Sprintf("chunk %d: no column %q", n, opt.Column))
			continue
		}

		keep := make([][]any, 0, chunk.Len()/8)
		for _, row := range chunk.Rows {
			if Matches(row[col], opt.Substring) {
				keep = append(keep, row)
			}
		}
		if len(keep) == 0 {
			continue
		}
		selected += int64(len(keep))

		cols := chunk.Present(FilteredColumns)
		if err := w.write(ctx, cols, chunk.Project(keep, cols)); err != nil {
			return fmt.Errorf("variant: filter: %w", err)
		}
	}

	metrics.RecordRows(opt.Job, StageFilter, "read", int64(tr.Rows()))
	metrics.RecordRows(opt.Job, StageFilter, "selected", selected)
	metrics.RecordRows(opt.Job, StageFilter, "written", w.written())
	metrics.RecordBatches(opt.Job, StageFilter, w.batches())
	return nil
}

// Matches reports whether a cell contains sub. Null never matches.
func Matches(v any, sub string) bool {
	if v == nil {
		return false
	}
	return strings.Contains(text(v), sub)
}

func recordMalformed(skips *skiplog.Recorder, stage string) func(int, error) {
	return func(line int, err error) {
		skips.Skip(stage, "malformed_record", fmt.Sprintf("line %d: %v", line, err))
	}
}
