package ddl

import (
	"fmt"
	"strings"

	gddl "clinetl/internal/ddl"
)

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement
// with backtick-quoted identifiers.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.ColumnClauses(t, QuoteIdent, MapColumn)
	if err != nil {
		return "", fmt.Errorf("mysql %w", err)
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		QuoteFQN(t.FQN),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent backtick-quotes id, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// QuoteFQN quotes each dotted segment of "db.table".
func QuoteFQN(fqn string) string {
	return gddl.QuoteFQN(strings.TrimSpace(fqn), QuoteIdent)
}
