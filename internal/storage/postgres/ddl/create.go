// Package ddl contains Postgres-specific helpers for generating DDL.
//
// It builds CREATE TABLE statements for a generic ddl.TableDef, using
// Postgres-style quoting (double-quoted identifiers, escaped quotes).
package ddl

import (
	"fmt"
	"strings"

	gddl "clinetl/internal/ddl"
)

// BuildCreateTableSQL builds a deterministic Postgres CREATE TABLE statement
// for the given table definition.
//
// Rules:
//   - t.FQN (fully-qualified table name) must be non-empty.
//   - Each column must have a non-empty Name and Type.
//   - Primary-key columns are always rendered as NOT NULL.
//   - The statement uses CREATE TABLE IF NOT EXISTS.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.ColumnClauses(t, QuoteIdent, MapColumn)
	if err != nil {
		return "", fmt.Errorf("postgres %w", err)
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(t.FQN),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent double-quotes a single identifier segment.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes each dotted segment of a schema-qualified name.
func QuoteFQN(fqn string) string {
	return gddl.QuoteFQN(strings.TrimSpace(fqn), QuoteIdent)
}
