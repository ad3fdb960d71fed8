package variant

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"clinetl/internal/ddl"
	"clinetl/internal/storage"
	"clinetl/internal/storage/sqlite"
)

func newStore(tb testing.TB) storage.Store {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "variants.db")
	s, err := sqlite.NewStore(context.Background(), sqlite.Config{DSN: dsn})
	if err != nil {
		tb.Fatalf("sqlite.NewStore(%q) error = %v", dsn, err)
	}
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

func readAll(tb testing.TB, s storage.Store, table string, cols []string) [][]any {
	tb.Helper()
	rows, err := s.SelectPage(context.Background(), table, cols, 10_000, 0)
	if err != nil {
		tb.Fatalf("SelectPage(%s) error = %v", table, err)
	}
	return rows
}

func count(tb testing.TB, s storage.Store, table string) int64 {
	tb.Helper()
	n, err := s.Count(context.Background(), table)
	if err != nil {
		tb.Fatalf("Count(%s) error = %v", table, err)
	}
	return n
}

func columnsOf(tb testing.TB, s storage.Store, table string) []string {
	tb.Helper()
	cols, err := s.Columns(context.Background(), table)
	if err != nil {
		tb.Fatalf("Columns(%s) error = %v", table, err)
	}
	return cols
}

// seed replaces table with def and inserts rows.
func seed(tb testing.TB, s storage.Store, def ddl.TableDef, rows [][]any) {
	tb.Helper()
	ctx := context.Background()
	if err := s.ReplaceTable(ctx, def); err != nil {
		tb.Fatalf("ReplaceTable(%s) error = %v", def.FQN, err)
	}
	if len(rows) == 0 {
		return
	}
	if _, err := s.InsertRows(ctx, def.FQN, def.ColumnNames(), rows); err != nil {
		tb.Fatalf("InsertRows(%s) error = %v", def.FQN, err)
	}
}

func textCols(fqn string, names ...string) ddl.TableDef {
	def := ddl.TableDef{FQN: fqn}
	for _, n := range names {
		typ := ddl.Text
		if contains(IntColumns, n) {
			typ = ddl.Integer
		}
		def.Columns = append(def.Columns, ddl.ColumnDef{Name: n, Type: typ, Nullable: true})
	}
	return def
}

func assertRows(tb testing.TB, got, want [][]any) {
	tb.Helper()
	if !reflect.DeepEqual(got, want) {
		tb.Fatalf("rows mismatch\n got: %#v\nwant: %#v", got, want)
	}
}
