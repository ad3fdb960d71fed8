package ddl

// Logical column types. Table definitions are written in these terms and each
// storage backend maps them onto its own SQL types (see the MapType functions
// under internal/storage/<backend>/ddl).
const (
	Text    = "text"
	Integer = "integer"
	Real    = "real"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Type: logical type (Text, Integer, Real)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name (FQN, optionally dotted "schema.table") and
// an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// KeyColumns returns the primary-key column names in declaration order.
func (t TableDef) KeyColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			out = append(out, c.Name)
		}
	}
	return out
}

// Column looks up a column by name.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// Project returns a copy of t restricted to the named columns, in the order
// given. Names that t does not declare are dropped.
func (t TableDef) Project(names []string) TableDef {
	out := TableDef{FQN: t.FQN, Columns: make([]ColumnDef, 0, len(names))}
	for _, n := range names {
		if c, ok := t.Column(n); ok {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}
