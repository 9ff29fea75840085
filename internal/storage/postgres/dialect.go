// Package postgres wires the Postgres backend into the storage registry using
// pgx v5 through its database/sql adapter, so the mapper can stay on sqlx.
package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"recordmap/internal/schema"
	"recordmap/internal/storage"
	pgddl "recordmap/internal/storage/postgres/ddl"
)

// Kind is the registry key for this backend.
const Kind = "postgres"

// Dialect implements storage.Dialect for Postgres. Generated keys are read
// back with INSERT ... RETURNING; the pgx driver does not implement
// LastInsertId.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func init() {
	storage.Register(Dialect{})
}

// Kind implements storage.Dialect.
func (Dialect) Kind() string { return Kind }

// DriverName implements storage.Dialect.
func (Dialect) DriverName() string { return "pgx" }

// ValidateDSN parses dsn with pgx so that malformed URLs and keyword/value
// strings fail before a connection is attempted.
func (Dialect) ValidateDSN(dsn string) error {
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return fmt.Errorf("postgres: parse dsn: %w", err)
	}
	return nil
}

// QuoteIdent implements storage.Dialect.
func (Dialect) QuoteIdent(name string) string { return pgddl.QuoteIdent(name) }

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(d schema.Descriptor) (string, error) {
	return pgddl.BuildCreateTableSQL(pgddl.FromDescriptor(d))
}

// InsertSQL implements storage.Dialect.
func (Dialect) InsertSQL(table string, cols []string, key string) (string, bool) {
	q := storage.BuildInsert(pgddl.QuoteIdent, table, cols, storage.InsertOptions{
		Suffix: "RETURNING " + pgddl.QuoteIdent(key),
	})
	return q, true
}
