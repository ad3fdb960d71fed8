package variant

import (
	"context"
	"fmt"
	"strconv"

	"clinetl/internal/ddl"
	"clinetl/internal/storage"
)

// tableWriter appends projected TSV rows to one table. The first write of a
// run replaces the table with a definition inferred from that first batch of
// rows; later writes are conformed to it and appended.
type tableWriter struct {
	store storage.Store
	table string
	stage string
	size  int

	def   ddl.TableDef
	batch *storage.Batch
}

func newTableWriter(store storage.Store, table, stage string, size int) *tableWriter {
	return &tableWriter{store: store, table: table, stage: stage, size: size}
}

// write appends rows aligned to cols. An empty rows slice writes nothing and
// does not touch the table.
func (w *tableWriter) write(ctx context.Context, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if w.batch == nil {
		w.def = inferTable(w.table, cols, rows)
		if err := w.store.ReplaceTable(ctx, w.def); err != nil {
			return fmt.Errorf("replace %s: %w", w.table, err)
		}
		b, err := storage.NewBatch(w.stage, w.def.ColumnNames(), w.size, func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return w.store.InsertRows(ctx, w.table, columns, rows)
		})
		if err != nil {
			return err
		}
		w.batch = b
	}

	names := w.def.ColumnNames()
	pos := make([]int, len(names))
	for i, n := range names {
		pos[i] = indexOf(cols, n)
	}
	for _, row := range rows {
		out := make([]any, len(names))
		for i, j := range pos {
			if j >= 0 {
				out[i] = w.conform(w.def.Columns[i], row[j])
			}
		}
		if err := w.batch.Add(ctx, out); err != nil {
			return fmt.Errorf("insert %s: %w", w.table, err)
		}
	}
	if err := w.batch.Flush(ctx); err != nil {
		return fmt.Errorf("insert %s: %w", w.table, err)
	}
	return nil
}

func (w *tableWriter) written() int64 {
	if w.batch == nil {
		return 0
	}
	return w.batch.Total()
}

func (w *tableWriter) batches() int64 {
	if w.batch == nil {
		return 0
	}
	return w.batch.Batches()
}

// conform renders int64 cells as text in Text columns. Every other cell is
// written as read: a text cell that reaches an Integer column after the
// first batch keeps its source text (sqlite stores it with its own type;
// stricter backends reject the insert).
func (w *tableWriter) conform(c ddl.ColumnDef, v any) any {
	if c.Type == ddl.Text {
		if n, ok := v.(int64); ok {
			return strconv.FormatInt(n, 10)
		}
	}
	return v
}

// inferTable declares a column Integer when it is one of IntColumns and every
// non-null cell in rows parsed as int64. Everything else is Text.
func inferTable(table string, cols []string, rows [][]any) ddl.TableDef {
	def := ddl.TableDef{FQN: table, Columns: make([]ddl.ColumnDef, len(cols))}
	for i, name := range cols {
		typ := ddl.Text
		if contains(IntColumns, name) && allInt(rows, i) {
			typ = ddl.Integer
		}
		def.Columns[i] = ddl.ColumnDef{Name: name, Type: typ, Nullable: true}
	}
	return def
}

func allInt(rows [][]any, col int) bool {
	for _, r := range rows {
		switch r[col].(type) {
		case nil, int64:
		default:
			return false
		}
	}
	return true
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func contains(list []string, s string) bool { return indexOf(list, s) >= 0 }
