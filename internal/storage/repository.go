// Package storage contains storage-agnostic contracts and utilities shared by
// the pipeline stages: the Store interface every backend implements, the
// backend registry, and a batching helper with progress logging.
package storage

import (
	"context"

	"clinetl/internal/ddl"
)

// Writer is the write surface shared by a Store and an open transaction.
//
// All methods take a table FQN, an ordered column list and rows aligned to
// that order. They return the number of rows the backend reports as written.
type Writer interface {
	// InsertRows appends rows as-is.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// InsertIgnore inserts rows whose key is not present yet and silently
	// skips the rest. Rows already in the table are left untouched.
	InsertIgnore(ctx context.Context, table string, columns, key []string, rows [][]any) (int64, error)

	// Upsert inserts rows or overwrites the existing row with the same key
	// (last write wins).
	Upsert(ctx context.Context, table string, columns, key []string, rows [][]any) (int64, error)
}

// Store is a relational destination/source opened through New.
type Store interface {
	Writer

	// Kind reports the registered backend name ("sqlite", "postgres", ...).
	Kind() string

	// EnsureTable creates the table if it does not exist. An existing table
	// is never altered or dropped.
	EnsureTable(ctx context.Context, def ddl.TableDef) error

	// ReplaceTable drops the table if present and recreates it from def.
	ReplaceTable(ctx context.Context, def ddl.TableDef) error

	// Columns returns the table's column names in declaration order, or an
	// empty slice (and nil error) when the table does not exist.
	Columns(ctx context.Context, table string) ([]string, error)

	// SelectPage reads up to limit rows starting at offset, in a stable
	// backend-defined order.
	SelectPage(ctx context.Context, table string, columns []string, limit, offset int) ([][]any, error)

	// Count returns the number of rows in table.
	Count(ctx context.Context, table string) (int64, error)

	// Begin opens a transaction. Writes through the returned Tx become
	// visible only after Commit.
	Begin(ctx context.Context) (Tx, error)

	Close() error
}

// Tx is an open transaction on a Store.
type Tx interface {
	Writer
	Commit() error
	Rollback() error
}
