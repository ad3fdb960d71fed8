package ddl

import (
	"testing"

	gddl "clinetl/internal/ddl"
)

func TestMapColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		col  gddl.ColumnDef
		want string
	}{
		{gddl.ColumnDef{Type: gddl.Integer}, "BIGINT"},
		{gddl.ColumnDef{Type: gddl.Real}, "FLOAT"},
		{gddl.ColumnDef{Type: gddl.Text}, "NVARCHAR(MAX)"},
		{gddl.ColumnDef{Type: gddl.Text, PrimaryKey: true}, "NVARCHAR(450)"},
		{gddl.ColumnDef{Type: gddl.Integer, PrimaryKey: true}, "BIGINT"},
	}
	for _, tt := range tests {
		if got := MapColumn(tt.col); got != tt.want {
			t.Errorf("MapColumn(%+v) = %q, want %q", tt.col, got, tt.want)
		}
	}
}
