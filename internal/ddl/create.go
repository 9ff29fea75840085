// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render simple CREATE TABLE statements from that model.
//
// BuildCreateTableSQL stays dialect-neutral: it does not quote identifiers and
// emits no IF NOT EXISTS. Backends describe their flavor with a Style and call
// Render, or replace the builder entirely (see internal/storage/mssql/ddl).
package ddl

import (
	"fmt"
	"strings"
)

// Style captures the dialect-specific knobs used by Render.
type Style struct {
	// Name prefixes error messages, e.g. "sqlite ddl". Defaults to "ddl".
	Name string

	// Quote quotes a single identifier. Nil emits identifiers verbatim.
	Quote func(string) string

	// IfNotExists emits CREATE TABLE IF NOT EXISTS.
	IfNotExists bool

	// InlinePrimaryKey renders PRIMARY KEY on the column itself when exactly
	// one column is part of the key. Composite keys always use a table
	// constraint.
	InlinePrimaryKey bool

	// AutoIncrement is the keyword appended to an inline primary-key column
	// flagged AutoIncrement, e.g. "AUTOINCREMENT" or "AUTO_INCREMENT". An
	// empty keyword makes AutoIncrement columns an error.
	AutoIncrement string

	// TableOptions is appended after the closing parenthesis, e.g.
	// "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4".
	TableOptions string
}

// BuildCreateTableSQL renders a generic CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty; it is emitted verbatim as the table name.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as:
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//     where NOT NULL is added when Nullable == false.
//
//   - Columns with PrimaryKey == true are collected and rendered as a separate
//     PRIMARY KEY (<col1>, <col2>, ...) clause at the end of the column list.
//
//   - The resulting statement has the form:
//
//     CREATE TABLE <FQN> (
//     <col1-def>,
//     <col2-def>,
//     ...,
//     [PRIMARY KEY (<pk-cols>)]
//     );
func BuildCreateTableSQL(t TableDef) (string, error) {
	return Render(t, Style{})
}

// Render builds a CREATE TABLE statement for t using the given Style.
//
// With InlinePrimaryKey and a single key column, the column renders as
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>] PRIMARY KEY [<AutoIncrement>]
//
// and no table-level PRIMARY KEY clause is emitted.
func Render(t TableDef, s Style) (string, error) {
	name := s.Name
	if name == "" {
		name = "ddl"
	}
	quote := s.Quote
	if quote == nil {
		quote = func(id string) string { return id }
	}

	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", name)
	}

	pkCount := 0
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pkCount++
		}
	}
	inline := s.InlinePrimaryKey && pkCount == 1

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, pkCount)

	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", name, col)
		}
		if c.AutoIncrement {
			if !c.PrimaryKey || !inline {
				return "", fmt.Errorf("%s: column %s: autoincrement requires a single-column primary key", name, col)
			}
			if s.AutoIncrement == "" {
				return "", fmt.Errorf("%s: column %s: autoincrement is not supported", name, col)
			}
		}

		var sb strings.Builder
		sb.WriteString(quote(col))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			// Default is emitted as raw SQL expression.
			sb.WriteString(def)
		}

		if c.PrimaryKey {
			if inline {
				sb.WriteString(" PRIMARY KEY")
				if c.AutoIncrement {
					sb.WriteByte(' ')
					sb.WriteString(s.AutoIncrement)
				}
			} else {
				pks = append(pks, quote(col))
			}
		}

		cols = append(cols, sb.String())
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if s.IfNotExists {
		create += "IF NOT EXISTS "
	}

	opts := ""
	if o := strings.TrimSpace(s.TableOptions); o != "" {
		opts = " " + o
	}

	stmt := fmt.Sprintf(
		"%s%s (\n  %s\n)%s;",
		create,
		QuoteFQN(fqn, quote),
		strings.Join(cols, ",\n  "),
		opts,
	)

	return stmt, nil
}

// QuoteFQN quotes each dotted segment of fqn, dropping empty segments.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
