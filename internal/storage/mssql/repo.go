// Package mssql implements a Microsoft SQL Server storage.Store. Plain
// appends go through the go-mssqldb bulk copy API; conflict-aware writes use
// MERGE.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	gddl "clinetl/internal/ddl"
	msddl "clinetl/internal/storage/mssql/ddl"
	"clinetl/internal/storage/sqlstore"
)

// Config holds MSSQL store configuration.
type Config struct {
	DSN string
}

// NewStore opens a connection pool and returns a Store over it.
func NewStore(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return sqlstore.New(db, dialect{}), nil
}

type dialect struct{}

var (
	_ sqlstore.Dialect = dialect{}
	_ sqlstore.Copier  = dialect{}
)

func (dialect) Name() string { return "mssql" }

func (dialect) QuoteIdent(id string) string { return msddl.QuoteIdent(id) }

func (dialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

func (dialect) CreateTableSQL(def gddl.TableDef) (string, error) {
	return msddl.BuildCreateTableSQL(def)
}

func (dialect) DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + msddl.QuoteFQN(fqn)
}

// ColumnsSQL reads sys.columns; OBJECT_ID yields NULL for a missing table,
// which matches no rows.
func (dialect) ColumnsSQL(fqn string) (string, []any) {
	return "SELECT name FROM sys.columns WHERE object_id = OBJECT_ID(@p1) ORDER BY column_id", []any{fqn}
}

// PageSQL orders by every selected column. Heaps have no stable scan order,
// and rows tied on all of them are indistinguishable to the caller.
func (d dialect) PageSQL(fqn string, columns []string, limit, offset int) string {
	list := sqlstore.QuotedList(columns, d.QuoteIdent)
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s OFFSET %d ROWS FETCH NEXT %d ROWS ONLY",
		list, msddl.QuoteFQN(fqn), list, offset, limit,
	)
}

func (d dialect) InsertSQL(fqn string, columns []string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		msddl.QuoteFQN(fqn),
		sqlstore.QuotedList(columns, d.QuoteIdent),
		sqlstore.Placeholders(len(columns), d.Placeholder),
	)
}

func (d dialect) InsertIgnoreSQL(fqn string, columns, key []string) string {
	return d.merge(fqn, columns, key, false)
}

func (d dialect) UpsertSQL(fqn string, columns, key []string) string {
	return d.merge(fqn, columns, key, true)
}

// merge renders a single-row MERGE keyed on key. With update set, matched
// rows have their non-key columns overwritten.
func (d dialect) merge(fqn string, columns, key []string, update bool) string {
	src := make([]string, len(columns))
	vals := make([]string, len(columns))
	for i, c := range columns {
		src[i] = d.Placeholder(i+1) + " AS " + d.QuoteIdent(c)
		vals[i] = "S." + d.QuoteIdent(c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "MERGE INTO %s WITH (HOLDLOCK) AS T USING (SELECT %s) AS S ON %s",
		msddl.QuoteFQN(fqn), strings.Join(src, ", "), buildJoinCondition(key))
	if rest := sqlstore.NonKey(columns, key); update && len(rest) > 0 {
		sets := make([]string, len(rest))
		for i, c := range rest {
			sets[i] = fmt.Sprintf("T.%s = S.%s", d.QuoteIdent(c), d.QuoteIdent(c))
		}
		sb.WriteString(" WHEN MATCHED THEN UPDATE SET " + strings.Join(sets, ", "))
	}
	fmt.Fprintf(&sb, " WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
		sqlstore.QuotedList(columns, d.QuoteIdent), strings.Join(vals, ", "))
	return sb.String()
}

// CopyRows performs a bulk insert directly into the target table.
func (dialect) CopyRows(ctx context.Context, db *sql.DB, fqn string, columns []string, rows [][]any) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(fqn, mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// buildJoinCondition builds the T=S equality join for the provided key columns.
func buildJoinCondition(keyColumns []string) string {
	conds := make([]string, 0, len(keyColumns))
	for _, col := range keyColumns {
		q := msddl.QuoteIdent(col)
		conds = append(conds, fmt.Sprintf("T.%s = S.%s", q, q))
	}
	return strings.Join(conds, " AND ")
}
