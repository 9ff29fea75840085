// Package mssql wires the SQL Server backend into the storage registry using
// github.com/microsoft/go-mssqldb.
package mssql

import (
	"fmt"

	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver
	"github.com/microsoft/go-mssqldb/msdsn"

	"recordmap/internal/schema"
	"recordmap/internal/storage"
	mssqlddl "recordmap/internal/storage/mssql/ddl"
)

// Kind is the registry key for this backend.
const Kind = "mssql"

// Dialect implements storage.Dialect for SQL Server. Generated keys are read
// back with OUTPUT INSERTED, which works inside and outside transactions
// without a second round trip for SCOPE_IDENTITY().
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func init() {
	storage.Register(Dialect{})
}

// Kind implements storage.Dialect.
func (Dialect) Kind() string { return Kind }

// DriverName implements storage.Dialect. sqlx binds "sqlserver" to @p1 style
// parameters.
func (Dialect) DriverName() string { return "sqlserver" }

// ValidateDSN parses dsn with the driver's own parser.
func (Dialect) ValidateDSN(dsn string) error {
	if _, err := msdsn.Parse(dsn); err != nil {
		return fmt.Errorf("mssql dsn: %w", err)
	}
	return nil
}

// QuoteIdent implements storage.Dialect.
func (Dialect) QuoteIdent(name string) string { return mssqlddl.QuoteIdent(name) }

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(d schema.Descriptor) (string, error) {
	return mssqlddl.BuildCreateTableSQL(mssqlddl.FromDescriptor(d))
}

// InsertSQL implements storage.Dialect.
func (Dialect) InsertSQL(table string, cols []string, key string) (string, bool) {
	q := storage.BuildInsert(mssqlddl.QuoteIdent, table, cols, storage.InsertOptions{
		Output: "OUTPUT INSERTED." + mssqlddl.QuoteIdent(key),
	})
	return q, true
}
