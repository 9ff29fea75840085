package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"recordmap/internal/schema"
)

// EnsureTable renders the dialect's CREATE TABLE IF NOT EXISTS for d and
// executes it on q. Calling it repeatedly is safe.
func EnsureTable(ctx context.Context, q sqlx.ExecerContext, dialect Dialect, d schema.Descriptor) error {
	stmt, err := dialect.CreateTableSQL(d)
	if err != nil {
		return fmt.Errorf("storage: build create table %s: %w", d.Table(), err)
	}
	if _, err := q.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("storage: create table %s: %w", d.Table(), err)
	}
	return nil
}
