// Package sqlite wires the SQLite backend into the storage registry. It
// registers a storage.Dialect in init, so callers never import it directly;
// a blank import (or internal/storage/all) is enough.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go driver registered as "sqlite"

	"recordmap/internal/schema"
	"recordmap/internal/storage"
	sqliteddl "recordmap/internal/storage/sqlite/ddl"
)

// Kind is the registry key for this backend.
const Kind = "sqlite"

// Dialect implements storage.Dialect for SQLite via modernc.org/sqlite.
//
// Generated keys come from sql.Result.LastInsertId, which reads
// last_insert_rowid() on the same connection that ran the INSERT.
type Dialect struct{}

// Ensure Dialect satisfies the interface at compile time.
var _ storage.Dialect = Dialect{}

func init() {
	// sqlx ships bindvar tables for mattn's "sqlite3" name only.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	storage.Register(Dialect{})
}

// Kind implements storage.Dialect.
func (Dialect) Kind() string { return Kind }

// DriverName implements storage.Dialect.
func (Dialect) DriverName() string { return "sqlite" }

// ValidateDSN accepts file paths, "file:" URIs and ":memory:". It only
// rejects values that cannot be a SQLite data source at all.
func (Dialect) ValidateDSN(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.Contains(dsn, "://") && !strings.HasPrefix(dsn, "file:") {
		return fmt.Errorf("sqlite: %q looks like a network URL, not a database file", dsn)
	}
	return nil
}

// QuoteIdent implements storage.Dialect.
func (Dialect) QuoteIdent(name string) string { return sqliteddl.QuoteIdent(name) }

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(d schema.Descriptor) (string, error) {
	return sqliteddl.BuildCreateTableSQL(sqliteddl.FromDescriptor(d))
}

// InsertSQL implements storage.Dialect. The key is read back through
// LastInsertId, so no RETURNING clause is emitted.
func (Dialect) InsertSQL(table string, cols []string, _ string) (string, bool) {
	return storage.BuildInsert(sqliteddl.QuoteIdent, table, cols, storage.InsertOptions{}), false
}
