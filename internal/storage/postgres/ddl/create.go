package ddl

import (
	"strings"

	gddl "recordmap/internal/ddl"
	"recordmap/internal/schema"
)

var style = gddl.Style{
	Name:             "postgres ddl",
	Quote:            quoteIdent,
	IfNotExists:      true,
	InlinePrimaryKey: true,
	AutoIncrement:    "GENERATED BY DEFAULT AS IDENTITY",
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// for the given table definition. Identifiers are double-quoted and
// schema-qualified names ("public.users") are quoted per segment. An
// auto-increment key becomes an identity column, so explicit ids can still be
// written.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, style)
}

// FromDescriptor derives a Postgres TableDef from a schema descriptor.
func FromDescriptor(d schema.Descriptor) gddl.TableDef {
	return gddl.FromDescriptor(d, MapType)
}

// QuoteIdent quotes a single Postgres identifier.
func QuoteIdent(id string) string { return quoteIdent(id) }

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
