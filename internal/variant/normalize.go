package variant

import (
	"context"
	"fmt"
	"strings"

	"clinetl/internal/metrics"
	"clinetl/internal/skiplog"
	"clinetl/internal/storage"
	"clinetl/internal/transformer/builtin"
)

// DefaultBatchSize is the page size of NormalizeIdentifiers.
const DefaultBatchSize = 100_000

// NormalizeOptions configures NormalizeIdentifiers. Zero values select the
// defaults.
type NormalizeOptions struct {
	SourceTable string // default FilteredTable
	TargetTable string // default IdentifierTable
	BatchSize   int    // default DefaultBatchSize

	Job   string
	Skips *skiplog.Recorder
}

func (o NormalizeOptions) withDefaults() NormalizeOptions {
	if o.SourceTable == "" {
		o.SourceTable = FilteredTable
	}
	if o.TargetTable == "" {
		o.TargetTable = IdentifierTable
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// NormalizeIdentifiers derives an identifier for every filtered row with a
// complete allele key and inserts it into the target table. Identifiers
// already present are kept as they are, so the stage can be re-run.
//
// The target table is created if missing. A source without VariationID or
// Chromosome (or no source table at all) makes the call a no-op.
func NormalizeIdentifiers(ctx context.Context, store storage.Store, opt NormalizeOptions) error {
	opt = opt.withDefaults()

	if err := store.EnsureTable(ctx, IdentifierDef(opt.TargetTable)); err != nil {
		return fmt.Errorf("variant: normalize: ensure %s: %w", opt.TargetTable, err)
	}

	present, err := store.Columns(ctx, opt.SourceTable)
	if err != nil {
		return fmt.Errorf("variant: normalize: probe %s: %w", opt.SourceTable, err)
	}
	schema := NewSchema(present)
	if !schema.Usable() {
		opt.Skips.Skip(StageNormalize, "missing_source_columns",
			fmt.Sprintf("%s lacks %s", opt.SourceTable, strings.Join(schema.Missing(), ",")))
		return nil
	}

	keepFirst := builtin.DeDup{Key: 0, Policy: "keep-first"}
	key := []string{ColVrsID}
	batch, err := storage.NewBatch(StageNormalize, IdentifierColumns, opt.BatchSize,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return store.InsertIgnore(ctx, opt.TargetTable, columns, key, keepFirst.Apply(rows))
		})
	if err != nil {
		return fmt.Errorf("variant: normalize: %w", err)
	}

	var read, rejected int64
	cols := schema.Columns()
	for offset := 0; ; offset += opt.BatchSize {
		page, err := store.SelectPage(ctx, opt.SourceTable, cols, opt.BatchSize, offset)
		if err != nil {
			return fmt.Errorf("variant: normalize: read %s at offset %d: %w", opt.SourceTable, offset, err)
		}
		if len(page) == 0 {
			break
		}
		read += int64(len(page))

		for _, row := range page {
			k, ok := schema.Key(row)
			if !ok {
				rejected++
				opt.Skips.Skip(StageNormalize, "incomplete_key", fmt.Sprint(schema.Value(row, ColVariationID)))
				continue
			}
			in := k.String()
			staged := []any{
				k.ID(),
				schema.Value(row, ColVariationID),
				schema.Value(row, ColGeneSymbol),
				in,
			}
			if err := batch.Add(ctx, staged); err != nil {
				return fmt.Errorf("variant: normalize: %w", err)
			}
		}
		if err := batch.Flush(ctx); err != nil {
			return fmt.Errorf("variant: normalize: %w", err)
		}
	}

	metrics.RecordRows(opt.Job, StageNormalize, "read", read)
	metrics.RecordRows(opt.Job, StageNormalize, "skipped", rejected)
	metrics.RecordRows(opt.Job, StageNormalize, "written", batch.Total())
	metrics.RecordBatches(opt.Job, StageNormalize, batch.Batches())
	return nil
}
