// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "clinetl/internal/ddl"
)

// MapType maps a logical type string into a MySQL column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.Integer, "int", "bigint":
		return "BIGINT"
	case gddl.Real, "float", "double":
		return "DOUBLE"
	default:
		return "TEXT"
	}
}

// MapColumn maps a column definition to its MySQL type. TEXT cannot be a key
// without a prefix length, so text key columns become VARCHAR(255).
func MapColumn(c gddl.ColumnDef) string {
	typ := MapType(c.Type)
	if c.PrimaryKey && typ == "TEXT" {
		return "VARCHAR(255)"
	}
	return typ
}
