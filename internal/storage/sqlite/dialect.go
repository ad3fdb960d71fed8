package sqlite

import (
	"fmt"
	"strings"

	gddl "clinetl/internal/ddl"
	"clinetl/internal/storage/sqlstore"
	sqliteddl "clinetl/internal/storage/sqlite/ddl"
)

type dialect struct{}

var _ sqlstore.Dialect = dialect{}

func (dialect) Name() string { return "sqlite" }

func (dialect) QuoteIdent(id string) string { return sqliteddl.QuoteIdent(id) }

func (dialect) Placeholder(int) string { return "?" }

func (dialect) CreateTableSQL(def gddl.TableDef) (string, error) {
	return sqliteddl.BuildCreateTableSQL(def)
}

func (dialect) DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + quoteFQN(fqn)
}

// ColumnsSQL reads pragma_table_info, which yields no rows for a missing
// table. A "schema.table" FQN is split into the pragma's two arguments.
func (dialect) ColumnsSQL(fqn string) (string, []any) {
	if schema, table, ok := strings.Cut(fqn, "."); ok {
		return "SELECT name FROM pragma_table_info(?, ?) ORDER BY cid", []any{table, schema}
	}
	return "SELECT name FROM pragma_table_info(?) ORDER BY cid", []any{fqn}
}

func (d dialect) PageSQL(fqn string, columns []string, limit, offset int) string {
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY rowid LIMIT %d OFFSET %d",
		sqlstore.QuotedList(columns, d.QuoteIdent), quoteFQN(fqn), limit, offset,
	)
}

func (d dialect) InsertSQL(fqn string, columns []string) string {
	return d.insert("INSERT", fqn, columns)
}

func (d dialect) InsertIgnoreSQL(fqn string, columns, _ []string) string {
	return d.insert("INSERT OR IGNORE", fqn, columns)
}

// UpsertSQL uses ON CONFLICT ... DO UPDATE so that only the listed columns
// are overwritten.
func (d dialect) UpsertSQL(fqn string, columns, key []string) string {
	stmt := d.insert("INSERT", fqn, columns)
	rest := sqlstore.NonKey(columns, key)
	if len(rest) == 0 {
		return stmt + " ON CONFLICT (" + sqlstore.QuotedList(key, d.QuoteIdent) + ") DO NOTHING"
	}
	sets := make([]string, len(rest))
	for i, c := range rest {
		q := d.QuoteIdent(c)
		sets[i] = q + " = excluded." + q
	}
	return stmt + " ON CONFLICT (" + sqlstore.QuotedList(key, d.QuoteIdent) + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

func (d dialect) insert(verb, fqn string, columns []string) string {
	return fmt.Sprintf(
		"%s INTO %s (%s) VALUES (%s)",
		verb,
		quoteFQN(fqn),
		sqlstore.QuotedList(columns, d.QuoteIdent),
		sqlstore.Placeholders(len(columns), d.Placeholder),
	)
}

func quoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, sqliteddl.QuoteIdent) }
