// Package ddl contains SQLite-specific helpers for generating DDL.
//
// It maps logical column types into SQLite column types. SQLite uses dynamic
// typing, so the mapping only picks a type affinity.
package ddl

import (
	"strings"

	gddl "clinetl/internal/ddl"
)

// MapType maps a logical type string (e.g., "integer", "real") into a SQLite
// column type:
//   - integer-ish types -> INTEGER
//   - float-ish types   -> REAL
//   - others            -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.Integer, "int", "bigint":
		return "INTEGER"
	case gddl.Real, "float", "double":
		return "REAL"
	default:
		return "TEXT"
	}
}

// MapColumn maps a column definition to its SQLite type.
func MapColumn(c gddl.ColumnDef) string { return MapType(c.Type) }
