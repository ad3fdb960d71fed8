// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses SQL Server-style identifier quoting: [schema].[table], [col].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     does not support CREATE TABLE IF NOT EXISTS.
//   - Renders PRIMARY KEY constraints as a separate clause.
package ddl

import (
	"fmt"
	"strings"

	gddl "clinetl/internal/ddl"
)

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist.
//
// The generated script has the form:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL],
//	    [col2] TYPE,
//	    PRIMARY KEY ([pk1], [pk2])
//	  );
//	END
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.ColumnClauses(t, QuoteIdent, MapColumn)
	if err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}
	fq := QuoteFQN(t.FQN)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND",
		strings.ReplaceAll(fq, "'", "''"),
		fq,
		strings.Join(cols, ",\n    "),
	), nil
}

// QuoteIdent brackets a single identifier, doubling embedded ']'.
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN brackets each dotted segment of fqn.
func QuoteFQN(fqn string) string {
	return gddl.QuoteFQN(strings.TrimSpace(fqn), QuoteIdent)
}
