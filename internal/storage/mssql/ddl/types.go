// Package ddl renders SQL Server DDL for a schema.Descriptor.
package ddl

import "strings"

// MapType maps a semantic column type onto a SQL Server type. Text and
// anything unrecognized become NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "float", "double", "real", "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	case "uuid":
		return "UNIQUEIDENTIFIER"
	case "blob", "bytes":
		return "VARBINARY(MAX)"
	default:
		return "NVARCHAR(MAX)"
	}
}

// keyType replaces NVARCHAR(MAX) for a text primary key, which SQL Server
// cannot index.
const keyType = "NVARCHAR(450)"
