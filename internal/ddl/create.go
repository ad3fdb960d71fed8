// Package ddl defines a small, backend-agnostic model for SQL DDL and the
// shared rendering used by the dialect-specific CREATE TABLE builders.
//
// The package stays dialect-free: it does not quote identifiers itself and
// does not know about IF NOT EXISTS guards. Backends supply a quote function
// and a type mapper and wrap the rendered column list in their own syntax.
package ddl

import (
	"fmt"
	"strings"
)

// QuoteFunc quotes a single identifier for a dialect.
type QuoteFunc func(string) string

// TypeFunc maps a column definition onto a concrete SQL type for a dialect.
type TypeFunc func(ColumnDef) string

// ColumnClauses validates t and renders one clause per column followed by an
// optional PRIMARY KEY clause:
//
//	<quoted name> <SQL type> [NOT NULL]
//	PRIMARY KEY (<pk1>, <pk2>)
//
// Primary-key columns are always rendered NOT NULL.
func ColumnClauses(t TableDef, quote QuoteFunc, mapType TypeFunc) ([]string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return nil, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		if strings.TrimSpace(c.Type) == "" {
			return nil, fmt.Errorf("ddl: column %s missing type", name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(mapType(c))
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return cols, nil
}

// QuoteFQN quotes every non-empty dotted segment of fqn with quote.
func QuoteFQN(fqn string, quote QuoteFunc) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
