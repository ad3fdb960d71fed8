package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"clinetl/internal/ddl"
	"clinetl/internal/storage"
)

// Store is a storage.Store backed by a *sql.DB and a Dialect.
type Store struct {
	db *sql.DB
	d  Dialect
}

var _ storage.Store = (*Store)(nil)

// New wraps an open database handle. The Store owns db and closes it on Close.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

// Kind implements storage.Store.
func (s *Store) Kind() string { return s.d.Name() }

// Close implements storage.Store.
func (s *Store) Close() error { return s.db.Close() }

// EnsureTable implements storage.Store.
func (s *Store) EnsureTable(ctx context.Context, def ddl.TableDef) error {
	stmt, err := s.d.CreateTableSQL(def)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: create table %s: %w", s.d.Name(), def.FQN, err)
	}
	return nil
}

// ReplaceTable implements storage.Store. Drop and create run in one
// transaction where the backend supports transactional DDL.
func (s *Store) ReplaceTable(ctx context.Context, def ddl.TableDef) error {
	create, err := s.d.CreateTableSQL(def)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", s.d.Name(), err)
	}
	if _, err := tx.ExecContext(ctx, s.d.DropTableSQL(def.FQN)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: drop table %s: %w", s.d.Name(), def.FQN, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: create table %s: %w", s.d.Name(), def.FQN, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.d.Name(), err)
	}
	return nil
}

// Columns implements storage.Store.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	q, args := s.d.ColumnsSQL(table)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: columns of %s: %w", s.d.Name(), table, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: scan column name: %w", s.d.Name(), err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// SelectPage implements storage.Store.
func (s *Store) SelectPage(ctx context.Context, table string, columns []string, limit, offset int) ([][]any, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s: SelectPage: columns must not be empty", s.d.Name())
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%s: SelectPage: limit must be > 0", s.d.Name())
	}
	rows, err := s.db.QueryContext(ctx, s.d.PageSQL(table, columns, limit, offset))
	if err != nil {
		return nil, fmt.Errorf("%s: select page of %s: %w", s.d.Name(), table, err)
	}
	defer rows.Close()

	out := make([][]any, 0, min(limit, 4096))
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.d.Name(), err)
		}
		for i, v := range vals {
			// Some drivers hand back text as []byte.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// Count implements storage.Store.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	q := "SELECT COUNT(*) FROM " + ddl.QuoteFQN(table, s.d.QuoteIdent)
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count %s: %w", s.d.Name(), table, err)
	}
	return n, nil
}

// InsertRows implements storage.Writer. It uses the dialect's Copier when
// there is one.
func (s *Store) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := checkRows(columns, rows); err != nil {
		return 0, fmt.Errorf("%s: %w", s.d.Name(), err)
	}
	if c, ok := s.d.(Copier); ok {
		n, err := c.CopyRows(ctx, s.db, table, columns, rows)
		if err != nil {
			return n, fmt.Errorf("%s: copy into %s: %w", s.d.Name(), table, err)
		}
		return n, nil
	}
	return s.inTx(ctx, func(tx *Tx) (int64, error) { return tx.InsertRows(ctx, table, columns, rows) })
}

// InsertIgnore implements storage.Writer.
func (s *Store) InsertIgnore(ctx context.Context, table string, columns, key []string, rows [][]any) (int64, error) {
	return s.inTx(ctx, func(tx *Tx) (int64, error) { return tx.InsertIgnore(ctx, table, columns, key, rows) })
}

// Upsert implements storage.Writer.
func (s *Store) Upsert(ctx context.Context, table string, columns, key []string, rows [][]any) (int64, error) {
	return s.inTx(ctx, func(tx *Tx) (int64, error) { return tx.Upsert(ctx, table, columns, key, rows) })
}

// Begin implements storage.Store.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	return s.begin(ctx)
}

func (s *Store) begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", s.d.Name(), err)
	}
	return &Tx{tx: tx, d: s.d}, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*Tx) (int64, error)) (int64, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	n, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func checkRows(columns []string, rows [][]any) error {
	if len(columns) == 0 {
		return fmt.Errorf("columns must not be empty")
	}
	for _, r := range rows {
		if len(r) != len(columns) {
			return fmt.Errorf("row length %d != columns length %d", len(r), len(columns))
		}
	}
	return nil
}

// QuotedList quotes each name with quote and joins them with ", ".
func QuotedList(names []string, quote ddl.QuoteFunc) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = quote(n)
	}
	return strings.Join(q, ", ")
}

// Placeholders renders n bind markers starting at argument 1.
func Placeholders(n int, ph func(int) string) string {
	p := make([]string, n)
	for i := range p {
		p[i] = ph(i + 1)
	}
	return strings.Join(p, ", ")
}

// NonKey returns the columns not listed in key, preserving order.
func NonKey(columns, key []string) []string {
	isKey := make(map[string]bool, len(key))
	for _, k := range key {
		isKey[k] = true
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !isKey[c] {
			out = append(out, c)
		}
	}
	return out
}
