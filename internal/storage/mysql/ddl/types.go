// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import "strings"

// MapType maps a semantic type into a MySQL column type.
//
//	"int"/"integer"/"bigint"  -> BIGINT
//	"bool"/"boolean"          -> BOOLEAN
//	"float"/"double"/"real"   -> DOUBLE
//	"numeric"/"decimal"       -> DECIMAL(38, 10)
//	"date"                    -> DATE
//	"timestamp"/"datetime"    -> DATETIME(6)
//	"blob"/"bytes"            -> LONGBLOB
//	everything else           -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BOOLEAN"
	case "float", "double", "real":
		return "DOUBLE"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME(6)"
	case "blob", "bytes":
		return "LONGBLOB"
	default:
		return "TEXT"
	}
}

// keyType is used instead of TEXT for a text primary key; MySQL cannot
// index TEXT without a prefix length.
const keyType = "VARCHAR(255)"
