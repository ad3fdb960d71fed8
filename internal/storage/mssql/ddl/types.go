// Package ddl contains MSSQL-specific helpers for generating DDL.
//
// It maps logical column types into SQL Server types, biased toward safe,
// widely-supported choices.
package ddl

import (
	"strings"

	gddl "clinetl/internal/ddl"
)

// MapType maps a logical type string into a SQL Server column type.
// Unknown or empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.Integer, "int", "bigint":
		return "BIGINT"
	case gddl.Real, "float", "double":
		return "FLOAT"
	default:
		return "NVARCHAR(MAX)"
	}
}

// MapColumn maps a column definition to its SQL Server type. Text key
// columns get a bounded length since index keys cannot be NVARCHAR(MAX).
func MapColumn(c gddl.ColumnDef) string {
	typ := MapType(c.Type)
	if c.PrimaryKey && typ == "NVARCHAR(MAX)" {
		return "NVARCHAR(450)"
	}
	return typ
}
