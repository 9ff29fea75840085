// Package storage owns the connection lifecycle and the registry of SQL
// dialects the mapper can talk to.
//
// Backends live in subpackages (internal/storage/sqlite, postgres, mysql,
// mssql) and register a Dialect from init(). Callers import
// internal/storage/all (or a single backend) for its side effects and then
// open a Session by kind.
package storage

import (
	"fmt"
	"sort"
	"sync"

	"recordmap/internal/schema"
)

// Dialect captures what differs between SQL backends for single-table CRUD.
//
// Statements produced by a Dialect use "?" placeholders; the mapper rebinds
// them for the driver through sqlx.
type Dialect interface {
	// Kind is the registry key, e.g. "sqlite".
	Kind() string
	// DriverName is the database/sql driver name, e.g. "sqlite" or "pgx".
	DriverName() string
	// ValidateDSN rejects obviously malformed data-source names before a
	// connection is attempted.
	ValidateDSN(dsn string) error
	// QuoteIdent quotes a single identifier.
	QuoteIdent(name string) string
	// CreateTableSQL renders an idempotent CREATE TABLE for d.
	CreateTableSQL(d schema.Descriptor) (string, error)
	// InsertSQL renders an INSERT of cols into table. When returning is true
	// the statement yields the generated key as a single-row result set;
	// otherwise the key is read from sql.Result.LastInsertId.
	InsertSQL(table string, cols []string, key string) (query string, returning bool)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Dialect{}
)

// Register registers (or replaces) the Dialect for d.Kind(). It is typically
// called from backend packages' init() functions.
func Register(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Kind()] = d
}

// Lookup returns the Dialect registered for kind.
func Lookup(kind string) (Dialect, error) {
	registryMu.RLock()
	d, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", kind)
	}
	return d, nil
}

// ListKinds returns the registered kinds in sorted order.
func ListKinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
