// Package postgres implements a Postgres-backed storage.Store using pgx v5.
// Connections come from a pgxpool.Pool exposed through database/sql; bulk
// appends use the COPY protocol on a raw pgx connection.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	gddl "clinetl/internal/ddl"
	pgddl "clinetl/internal/storage/postgres/ddl"
	"clinetl/internal/storage/sqlstore"
)

// Config holds Postgres store configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// NewStore opens a pool, verifies connectivity and returns a Store over it.
func NewStore(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return sqlstore.New(stdlib.OpenDBFromPool(pool), dialect{}), nil
}

type dialect struct{}

var (
	_ sqlstore.Dialect = dialect{}
	_ sqlstore.Copier  = dialect{}
)

func (dialect) Name() string { return "postgres" }

func (dialect) QuoteIdent(id string) string { return pgddl.QuoteIdent(id) }

func (dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (dialect) CreateTableSQL(def gddl.TableDef) (string, error) {
	return pgddl.BuildCreateTableSQL(def)
}

func (dialect) DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + pgddl.QuoteFQN(fqn)
}

func (dialect) ColumnsSQL(fqn string) (string, []any) {
	if schema, table, ok := strings.Cut(fqn, "."); ok {
		return `SELECT column_name FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`, []any{schema, table}
	}
	return `SELECT column_name FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`, []any{fqn}
}

// PageSQL orders by ctid, which is stable while the source table is not
// being written.
func (d dialect) PageSQL(fqn string, columns []string, limit, offset int) string {
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY ctid LIMIT %d OFFSET %d",
		sqlstore.QuotedList(columns, d.QuoteIdent), pgddl.QuoteFQN(fqn), limit, offset,
	)
}

func (d dialect) InsertSQL(fqn string, columns []string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pgddl.QuoteFQN(fqn),
		sqlstore.QuotedList(columns, d.QuoteIdent),
		sqlstore.Placeholders(len(columns), d.Placeholder),
	)
}

func (d dialect) InsertIgnoreSQL(fqn string, columns, key []string) string {
	return d.InsertSQL(fqn, columns) + " ON CONFLICT (" + sqlstore.QuotedList(key, d.QuoteIdent) + ") DO NOTHING"
}

func (d dialect) UpsertSQL(fqn string, columns, key []string) string {
	rest := sqlstore.NonKey(columns, key)
	if len(rest) == 0 {
		return d.InsertIgnoreSQL(fqn, columns, key)
	}
	return d.InsertSQL(fqn, columns) +
		" ON CONFLICT (" + sqlstore.QuotedList(key, d.QuoteIdent) + ") DO UPDATE SET " +
		strings.Join(updateColumns(rest), ", ")
}

// CopyRows streams rows with COPY FROM STDIN on a raw pgx connection.
func (dialect) CopyRows(ctx context.Context, db *sql.DB, fqn string, columns []string, rows [][]any) (int64, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var n int64
	err = conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		var cerr error
		n, cerr = c.Conn().CopyFrom(ctx, identifier(fqn), columns, pgx.CopyFromRows(rows))
		return cerr
	})
	return n, err
}

// updateColumns generates a list of column updates in the format: "col = EXCLUDED.col"
func updateColumns(cols []string) []string {
	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		q := pgddl.QuoteIdent(col)
		updates = append(updates, q+" = EXCLUDED."+q)
	}
	return updates
}

// identifier splits a dotted FQN into a pgx.Identifier.
func identifier(fqn string) pgx.Identifier {
	var id pgx.Identifier
	for _, p := range strings.Split(fqn, ".") {
		if p = strings.TrimSpace(p); p != "" {
			id = append(id, p)
		}
	}
	return id
}
