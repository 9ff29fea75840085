// Package mysql wires the MySQL backend into the storage registry using
// github.com/go-sql-driver/mysql.
package mysql

import (
	"fmt"

	"github.com/go-sql-driver/mysql"

	"recordmap/internal/schema"
	"recordmap/internal/storage"
	mysqlddl "recordmap/internal/storage/mysql/ddl"
)

// Kind is the registry key for this backend.
const Kind = "mysql"

// Dialect implements storage.Dialect for MySQL and MariaDB. Generated keys
// come from LastInsertId.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func init() {
	storage.Register(Dialect{})
}

// Kind implements storage.Dialect.
func (Dialect) Kind() string { return Kind }

// DriverName implements storage.Dialect.
func (Dialect) DriverName() string { return "mysql" }

// ValidateDSN parses dsn in the driver's user:pass@tcp(host)/db format.
func (Dialect) ValidateDSN(dsn string) error {
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return fmt.Errorf("mysql: parse dsn: %w", err)
	}
	return nil
}

// QuoteIdent implements storage.Dialect.
func (Dialect) QuoteIdent(name string) string { return mysqlddl.QuoteIdent(name) }

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(d schema.Descriptor) (string, error) {
	return mysqlddl.BuildCreateTableSQL(mysqlddl.FromDescriptor(d))
}

// InsertSQL implements storage.Dialect. MySQL has no DEFAULT VALUES form.
func (Dialect) InsertSQL(table string, cols []string, _ string) (string, bool) {
	q := storage.BuildInsert(mysqlddl.QuoteIdent, table, cols, storage.InsertOptions{
		EmptyValues: "() VALUES ()",
	})
	return q, false
}
