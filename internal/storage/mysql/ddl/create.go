package ddl

import (
	"strings"

	gddl "recordmap/internal/ddl"
	"recordmap/internal/schema"
)

// TableOptions is appended to every CREATE TABLE so that text columns store
// full Unicode.
const TableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci"

var style = gddl.Style{
	Name:             "mysql ddl",
	Quote:            quoteIdent,
	IfNotExists:      true,
	InlinePrimaryKey: true,
	AutoIncrement:    "AUTO_INCREMENT",
	TableOptions:     TableOptions,
}

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement
// with backtick-quoted identifiers.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, style)
}

// FromDescriptor derives a MySQL TableDef from a schema descriptor. A primary
// key that maps to TEXT is narrowed to VARCHAR(255).
func FromDescriptor(d schema.Descriptor) gddl.TableDef {
	t := gddl.FromDescriptor(d, MapType)
	for i, c := range t.Columns {
		if c.PrimaryKey && c.SQLType == "TEXT" {
			t.Columns[i].SQLType = keyType
		}
	}
	return t
}

// QuoteIdent quotes a single MySQL identifier with backticks.
func QuoteIdent(id string) string { return quoteIdent(id) }

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
