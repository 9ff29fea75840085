// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses SQL Server-style identifier quoting: [schema].[table], [col].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     does not support CREATE TABLE IF NOT EXISTS.
//   - Treats ColumnDef.Default as raw SQL.
//   - Renders an auto-increment key as an inline IDENTITY(1,1) PRIMARY KEY.
package ddl

import (
	"fmt"
	"strings"

	gddl "recordmap/internal/ddl"
	"recordmap/internal/schema"
)

var style = gddl.Style{
	Name:             "mssql ddl",
	Quote:            quoteIdent,
	InlinePrimaryKey: true,
	AutoIncrement:    "IDENTITY(1,1)",
}

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist.
//
// The generated script has the form:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [id] BIGINT PRIMARY KEY IDENTITY(1,1),
//	    [col1] TYPE [NOT NULL] [DEFAULT expr]
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	create, err := gddl.Render(t, style)
	if err != nil {
		return "", err
	}

	fqn := gddl.QuoteFQN(strings.TrimSpace(t.FQN), quoteIdent)
	lines := strings.Split(create, "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}

	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		strings.Join(lines, "\n"),
	), nil
}

// FromDescriptor derives an MSSQL TableDef from a schema descriptor. A text
// primary key is narrowed to keyType.
func FromDescriptor(d schema.Descriptor) gddl.TableDef {
	t := gddl.FromDescriptor(d, MapType)
	for i, c := range t.Columns {
		if c.PrimaryKey && c.SQLType == "NVARCHAR(MAX)" {
			t.Columns[i].SQLType = keyType
		}
	}
	return t
}

// QuoteIdent quotes a single SQL Server identifier.
func QuoteIdent(id string) string { return quoteIdent(id) }

// quoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
