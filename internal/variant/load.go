package variant

import (
	"context"
	"errors"
	"fmt"
	"io"

	"clinetl/internal/datasource/file"
	"clinetl/internal/metrics"
	"clinetl/internal/parser/tsv"
	"clinetl/internal/skiplog"
	"clinetl/internal/storage"
)

// LoadOptions configures LoadVariants. Zero values select the defaults.
type LoadOptions struct {
	// Table receives the rows. Default VariantTable.
	Table      string
	ChunkSize  int
	Encoding   string
	NullValues []string

	Job   string
	Skips *skiplog.Recorder
}

// LoadVariantsFile opens path (plain or gzip) and runs LoadVariants over it.
func LoadVariantsFile(ctx context.Context, path string, store storage.Store, opt LoadOptions) error {
	rc, err := file.NewLocal(path, opt.Encoding).Open(ctx)
	if err != nil {
		return fmt.Errorf("variant: load: %w", err)
	}
	defer rc.Close()
	return LoadVariants(ctx, rc, store, opt)
}

// LoadVariants copies the LoadColumns present in r into the variant table,
// replacing its previous contents. A source without any of those columns
// leaves the table untouched.
func LoadVariants(ctx context.Context, r io.Reader, store storage.Store, opt LoadOptions) error {
	if opt.Table == "" {
		opt.Table = VariantTable
	}
	if opt.ChunkSize <= 0 {
		opt.ChunkSize = tsv.DefaultChunkSize
	}

	tr, err := tsv.NewReader(r, tsv.Options{
		ChunkSize:  opt.ChunkSize,
		NullValues: opt.NullValues,
		IntColumns: IntColumns,
		OnError:    recordMalformed(opt.Skips, StageLoad),
	})
	if err != nil {
		return fmt.Errorf("variant: load: %w", err)
	}

	w := newTableWriter(store, opt.Table, StageLoad, opt.ChunkSize)
	for {
		chunk, err := tr.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("variant: load: %w", err)
		}
		cols := chunk.Present(LoadColumns)
		if len(cols) == 0 {
			opt.Skips.Skip(StageLoad, "no_known_columns", fmt.Sprintf("%d rows", chunk.Len()))
			continue
		}
		if err := w.write(ctx, cols, chunk.Project(chunk.Rows, cols)); err != nil {
			return fmt.Errorf("variant: load: %w", err)
		}
	}

	metrics.RecordRows(opt.Job, StageLoad, "read", int64(tr.Rows()))
	metrics.RecordRows(opt.Job, StageLoad, "written", w.written())
	metrics.RecordBatches(opt.Job, StageLoad, w.batches())
	return nil
}
