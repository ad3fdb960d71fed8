package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"clinetl/internal/storage"
)

// Tx is a storage.Tx over *sql.Tx. Every write prepares its statement once
// and executes it per row.
type Tx struct {
	tx *sql.Tx
	d  Dialect
}

var _ storage.Tx = (*Tx)(nil)

// InsertRows implements storage.Writer.
func (t *Tx) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return t.exec(ctx, "insert", t.d.InsertSQL(table, columns), columns, rows)
}

// InsertIgnore implements storage.Writer.
func (t *Tx) InsertIgnore(ctx context.Context, table string, columns, key []string, rows [][]any) (int64, error) {
	if len(key) == 0 {
		return 0, fmt.Errorf("%s: insert-ignore into %s: key must not be empty", t.d.Name(), table)
	}
	return t.exec(ctx, "insert-ignore", t.d.InsertIgnoreSQL(table, columns, key), columns, rows)
}

// Upsert implements storage.Writer. The reported count is the number of rows
// submitted, since backends disagree on what an update "affects".
func (t *Tx) Upsert(ctx context.Context, table string, columns, key []string, rows [][]any) (int64, error) {
	if len(key) == 0 {
		return 0, fmt.Errorf("%s: upsert into %s: key must not be empty", t.d.Name(), table)
	}
	if _, err := t.exec(ctx, "upsert", t.d.UpsertSQL(table, columns, key), columns, rows); err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// Commit implements storage.Tx.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", t.d.Name(), err)
	}
	return nil
}

// Rollback implements storage.Tx.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

func (t *Tx) exec(ctx context.Context, op, stmtSQL string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := checkRows(columns, rows); err != nil {
		return 0, fmt.Errorf("%s: %s: %w", t.d.Name(), op, err)
	}
	stmt, err := t.tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare %s: %w", t.d.Name(), op, err)
	}
	defer stmt.Close()

	var affected int64
	for _, row := range rows {
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return affected, fmt.Errorf("%s: %s: %w", t.d.Name(), op, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			affected += n
		}
	}
	return affected, nil
}
