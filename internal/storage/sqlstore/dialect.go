// Package sqlstore implements storage.Store on top of database/sql. Each
// backend supplies a Dialect with its quoting, paging and conflict syntax;
// everything else (transactions, prepared inserts, scanning) lives here.
package sqlstore

import (
	"context"
	"database/sql"

	"clinetl/internal/ddl"
)

// Dialect renders the backend-specific SQL the Store needs.
type Dialect interface {
	// Name is the registered storage kind.
	Name() string

	// QuoteIdent quotes a single identifier.
	QuoteIdent(id string) string

	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string

	CreateTableSQL(def ddl.TableDef) (string, error)
	DropTableSQL(fqn string) string

	// ColumnsSQL returns a query yielding one column name per row, in
	// declaration order, plus its arguments. It must return no rows when the
	// table does not exist.
	ColumnsSQL(fqn string) (string, []any)

	PageSQL(fqn string, columns []string, limit, offset int) string
	InsertSQL(fqn string, columns []string) string
	InsertIgnoreSQL(fqn string, columns, key []string) string
	UpsertSQL(fqn string, columns, key []string) string
}

// Copier is implemented by dialects with a native bulk-append path that is
// faster than row-by-row prepared inserts. The Store uses it for InsertRows
// outside a transaction.
type Copier interface {
	CopyRows(ctx context.Context, db *sql.DB, fqn string, columns []string, rows [][]any) (int64, error)
}
