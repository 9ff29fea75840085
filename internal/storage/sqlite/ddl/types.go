// Package ddl contains SQLite-specific helpers for generating DDL.
//
// It maps semantic column types into SQLite column types. SQLite uses type
// affinity, so anything it does not recognize is kept, upper-cased, as
// declared.
package ddl

import "strings"

// MapType maps a semantic type string (e.g., "int", "bool", "date") into a
// SQLite column type.
//
// SQLite supports dynamic typing, so this mapping prefers canonical affinities:
//   - integer-ish types -> INTEGER
//   - boolean          -> INTEGER (0/1)
//   - date/time        -> TEXT (ISO-8601)
//   - empty            -> TEXT
//   - others           -> the declared type, upper-cased
func MapType(kind string) string {
	k := strings.TrimSpace(kind)
	switch strings.ToLower(k) {
	case "int", "integer", "bigint":
		return "INTEGER"
	case "bool", "boolean":
		return "INTEGER" // 0/1
	case "float", "double", "real":
		return "REAL"
	case "numeric", "decimal":
		return "NUMERIC"
	case "date", "timestamp", "datetime", "timestamptz":
		return "TEXT" // store ISO-8601 strings
	case "blob", "bytes":
		return "BLOB"
	case "", "text", "string":
		return "TEXT"
	default:
		return strings.ToUpper(k)
	}
}
