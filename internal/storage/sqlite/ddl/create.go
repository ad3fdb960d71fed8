// Package ddl provides SQLite-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses simple double-quoted identifiers: "table", "col".
//   - Emits CREATE TABLE IF NOT EXISTS.
//   - Renders PRIMARY KEY as a separate table constraint.
package ddl

import (
	"fmt"
	"strings"

	gddl "clinetl/internal/ddl"
)

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for the given
// table definition. The statement has the form:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL],
//	  "col2" TYPE,
//	  PRIMARY KEY ("pk1", "pk2")
//	);
//
// TableDef.FQN is interpreted as a table name; if it contains dots (e.g.,
// "main.events"), each segment is individually quoted.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.ColumnClauses(t, QuoteIdent, MapColumn)
	if err != nil {
		return "", fmt.Errorf("sqlite %w", err)
	}
	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		gddl.QuoteFQN(strings.TrimSpace(t.FQN), QuoteIdent),
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}

// QuoteIdent double-quotes id, doubling embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
