package ddl

import (
	"reflect"
	"strings"
	"testing"
)

func dq(s string) string { return `"` + s + `"` }

func upper(c ColumnDef) string { return strings.ToUpper(c.Type) }

// TestColumnClauses verifies clause rendering and input validation.
func TestColumnClauses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		want        []string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{FQN: " ", Columns: []ColumnDef{{Name: "id", Type: Text}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "", Type: Text}}},
			errContains: "column with empty name",
		},
		{
			name:        "column without type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing type",
		},
		{
			name: "nullable and key columns",
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "id", Type: Text, PrimaryKey: true, Nullable: true},
				{Name: "n", Type: Integer, Nullable: true},
				{Name: "x", Type: Real},
			}},
			want: []string{
				`"id" TEXT NOT NULL`,
				`"n" INTEGER`,
				`"x" REAL NOT NULL`,
				`PRIMARY KEY ("id")`,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ColumnClauses(tt.def, dq, upper)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("ColumnClauses() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ColumnClauses() =\n%#v\nwant\n%#v", got, tt.want)
			}
		})
	}
}

func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"events":       `"events"`,
		"main.events":  `"main"."events"`,
		" .main..ev. ": `"main"."ev"`,
		"":             "",
	}
	for in, want := range cases {
		if got := QuoteFQN(in, dq); got != want {
			t.Errorf("QuoteFQN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTableDefHelpers(t *testing.T) {
	t.Parallel()

	def := TableDef{FQN: "t", Columns: []ColumnDef{
		{Name: "a", Type: Text, PrimaryKey: true},
		{Name: "b", Type: Integer, Nullable: true},
		{Name: "c", Type: Real, Nullable: true},
	}}

	if got := def.ColumnNames(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("ColumnNames() = %v", got)
	}
	if got := def.KeyColumns(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("KeyColumns() = %v", got)
	}
	p := def.Project([]string{"c", "missing", "a"})
	if got := p.ColumnNames(); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("Project().ColumnNames() = %v", got)
	}
	if p.FQN != "t" {
		t.Fatalf("Project().FQN = %q", p.FQN)
	}
}
