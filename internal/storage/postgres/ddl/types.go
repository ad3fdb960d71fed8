// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "clinetl/internal/ddl"
)

// MapType normalizes a loosely-specified logical type into a Postgres SQL type.
//
//	"int"/"integer"/"bigint" -> BIGINT
//	"real"/"float"/"double"  -> DOUBLE PRECISION
//	everything else          -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.Integer, "int", "bigint":
		return "BIGINT"
	case gddl.Real, "float", "double":
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// MapColumn maps a column definition to its Postgres type.
func MapColumn(c gddl.ColumnDef) string { return MapType(c.Type) }
