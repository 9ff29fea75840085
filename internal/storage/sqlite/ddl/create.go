// Package ddl provides SQLite-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses simple double-quoted identifiers: "table", "col".
//   - Emits CREATE TABLE IF NOT EXISTS.
//   - Treats ColumnDef.Default as raw SQL.
//   - Renders a single-column PRIMARY KEY inline, followed by AUTOINCREMENT
//     when the column is flagged; composite keys become a table constraint.
package ddl

import (
	"strings"

	gddl "recordmap/internal/ddl"
)

var style = gddl.Style{
	Name:             "sqlite ddl",
	Quote:            quoteIdent,
	IfNotExists:      true,
	InlinePrimaryKey: true,
	AutoIncrement:    "AUTOINCREMENT",
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for the given
// table definition. The statement has the form:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "id" INTEGER PRIMARY KEY AUTOINCREMENT,
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  "col2" TYPE
//	);
//
// TableDef.FQN is interpreted as a table name; if it contains dots (e.g.,
// "main.events"), each segment is individually quoted.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, style)
}

// QuoteIdent quotes a single SQLite identifier.
func QuoteIdent(id string) string { return quoteIdent(id) }

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
