// Package ddl renders Postgres DDL for a schema.Descriptor.
package ddl

import "strings"

// MapType maps a semantic column type onto a Postgres type; text and
// anything unrecognized become TEXT.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BOOLEAN"
	case "float", "double", "real":
		return "DOUBLE PRECISION"
	case "numeric", "decimal":
		return "NUMERIC"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "TIMESTAMPTZ"
	case "uuid":
		return "UUID"
	case "blob", "bytes":
		return "BYTEA"
	default:
		return "TEXT"
	}
}
