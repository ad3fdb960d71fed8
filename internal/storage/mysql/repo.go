// Package mysql provides a MySQL-backed storage.Store implementation using
// github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	gddl "clinetl/internal/ddl"
	myddl "clinetl/internal/storage/mysql/ddl"
	"clinetl/internal/storage/sqlstore"
)

// Config holds MySQL store configuration.
type Config struct {
	DSN string // go-sql-driver DSN, e.g. "user:pw@tcp(host:3306)/clin"
}

// NewStore parses the DSN, opens a pool and returns a Store over it.
func NewStore(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	mcfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	conn, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return sqlstore.New(db, dialect{}), nil
}

type dialect struct{}

var _ sqlstore.Dialect = dialect{}

func (dialect) Name() string { return "mysql" }

func (dialect) QuoteIdent(id string) string { return myddl.QuoteIdent(id) }

func (dialect) Placeholder(int) string { return "?" }

func (dialect) CreateTableSQL(def gddl.TableDef) (string, error) {
	return myddl.BuildCreateTableSQL(def)
}

func (dialect) DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + myddl.QuoteFQN(fqn)
}

func (dialect) ColumnsSQL(fqn string) (string, []any) {
	if db, table, ok := strings.Cut(fqn, "."); ok {
		return `SELECT COLUMN_NAME FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`, []any{db, table}
	}
	return `SELECT COLUMN_NAME FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`, []any{fqn}
}

// PageSQL orders by every selected column. Tables without a primary key have
// no guaranteed scan order, and rows tied on all of them are
// indistinguishable to the caller.
func (d dialect) PageSQL(fqn string, columns []string, limit, offset int) string {
	list := sqlstore.QuotedList(columns, d.QuoteIdent)
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s LIMIT %d OFFSET %d",
		list, myddl.QuoteFQN(fqn), list, limit, offset,
	)
}

func (d dialect) InsertSQL(fqn string, columns []string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		myddl.QuoteFQN(fqn),
		sqlstore.QuotedList(columns, d.QuoteIdent),
		sqlstore.Placeholders(len(columns), d.Placeholder),
	)
}

// InsertIgnoreSQL assigns the first key column to itself on conflict. INSERT
// IGNORE is avoided because it also downgrades unrelated errors to warnings.
func (d dialect) InsertIgnoreSQL(fqn string, columns, key []string) string {
	k := d.QuoteIdent(key[0])
	return d.InsertSQL(fqn, columns) + " ON DUPLICATE KEY UPDATE " + k + " = " + k
}

func (d dialect) UpsertSQL(fqn string, columns, key []string) string {
	rest := sqlstore.NonKey(columns, key)
	if len(rest) == 0 {
		return d.InsertIgnoreSQL(fqn, columns, key)
	}
	sets := make([]string, len(rest))
	for i, c := range rest {
		q := d.QuoteIdent(c)
		sets[i] = q + " = VALUES(" + q + ")"
	}
	return d.InsertSQL(fqn, columns) + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}
