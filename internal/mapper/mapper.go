// Package mapper maps one in-memory record to one relational table.
//
// A Mapper is built from a schema.Descriptor and the storage.Dialect of the
// session it will run against. Operations take the handle to run on
// explicitly (a *sqlx.DB, a *sqlx.Tx or storage.Session.Ext()), so the
// mapper holds no connection state of its own.
//
//	sess, _ := storage.Open(ctx, storage.Config{DSN: "app.db"}, log)
//	defer sess.Close(true)
//	users, _ := mapper.New(desc, sess.Dialect(), mapper.WithLogger(log))
//	rec, _ := users.NewRecord(map[string]any{"email": "a@example.com"})
//	id, err := users.Save(ctx, sess.Ext(), rec)
package mapper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"recordmap/internal/metrics"
	"recordmap/internal/schema"
	"recordmap/internal/storage"
)

var (
	// ErrNotFound is returned when no row matches the primary key.
	ErrNotFound = errors.New("mapper: record not found")
	// ErrUnknownColumn is returned when setting an undeclared attribute.
	ErrUnknownColumn = errors.New("mapper: unknown column")
	// ErrNotSaved is returned by Delete for a record without a primary key.
	ErrNotSaved = errors.New("mapper: record has no primary key value")
	// ErrForeignRecord is returned when a record was created by another Mapper.
	ErrForeignRecord = errors.New("mapper: record belongs to a different mapper")
)

// Column is the public view of one declared column.
type Column struct {
	Name          string
	Type          string
	PrimaryKey    bool
	AutoIncrement bool
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger used for per-statement debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Mapper) { m.log = l }
}

// Mapper runs CRUD statements for a single table.
type Mapper struct {
	desc    schema.Descriptor
	dialect storage.Dialect
	log     zerolog.Logger

	selectSQL string
	updateSQL string
	deleteSQL string
	updCols   []string
}

// New builds a Mapper for desc rendered in dialect.
func New(desc schema.Descriptor, dialect storage.Dialect, opts ...Option) (*Mapper, error) {
	if desc.IsZero() {
		return nil, fmt.Errorf("mapper: descriptor is not initialized")
	}
	if dialect == nil {
		return nil, fmt.Errorf("mapper: dialect is required")
	}
	m := &Mapper{desc: desc, dialect: dialect, log: zerolog.Nop()}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.With().Str("table", desc.Table()).Logger()
	m.buildStatements()
	return m, nil
}

// buildStatements renders the statements that do not depend on record state.
func (m *Mapper) buildStatements() {
	q := m.dialect.QuoteIdent
	table := q(m.desc.Table())
	pk := q(m.desc.PrimaryKey().Name)

	cols := m.desc.ColumnNames()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = q(c)
	}
	m.selectSQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", strings.Join(quoted, ", "), table, pk)
	m.deleteSQL = fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, pk)

	pkName := m.desc.PrimaryKey().Name
	var sets []string
	for _, c := range m.desc.Writable() {
		if c == pkName {
			continue
		}
		m.updCols = append(m.updCols, c)
		sets = append(sets, q(c)+" = ?")
	}
	if len(sets) > 0 {
		m.updateSQL = fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, strings.Join(sets, ", "), pk)
	}
}

// TableName returns the table the mapper writes to.
func (m *Mapper) TableName() string { return m.desc.Table() }

// PrimaryKeyName returns the primary-key column name.
func (m *Mapper) PrimaryKeyName() string { return m.desc.PrimaryKey().Name }

// Descriptor returns the schema the mapper was built from.
func (m *Mapper) Descriptor() schema.Descriptor { return m.desc }

// Columns returns the declared columns in order.
func (m *Mapper) Columns() []Column {
	cols := m.desc.Columns()
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = Column{Name: c.Name, Type: c.Type, PrimaryKey: c.PrimaryKey, AutoIncrement: c.AutoIncrement}
	}
	return out
}

// CreateTable creates the table if it does not exist yet.
func (m *Mapper) CreateTable(ctx context.Context, q sqlx.ExecerContext) (err error) {
	defer m.observe("create_table", time.Now(), &err)
	return storage.EnsureTable(ctx, q, m.dialect, m.desc)
}

// Save writes rec. A saved record is updated by primary key and Save returns
// nil. An unsaved record is inserted; Save then assigns and returns its
// primary-key value.
//
// Unlike Delete, an update that matches no row is not an error: MySQL
// reports zero affected rows for an unchanged row, so the count cannot tell
// a vanished row from an idempotent save.
func (m *Mapper) Save(ctx context.Context, q sqlx.ExtContext, rec *Record) (any, error) {
	if err := m.own(rec); err != nil {
		return nil, err
	}
	if rec.Saved() {
		return nil, m.update(ctx, q, rec)
	}
	return m.insert(ctx, q, rec)
}

func (m *Mapper) update(ctx context.Context, q sqlx.ExtContext, rec *Record) (err error) {
	defer m.observe("save_update", time.Now(), &err)

	if m.updateSQL == "" {
		return nil
	}
	args := make([]any, 0, len(m.updCols)+1)
	for _, c := range m.updCols {
		args = append(args, rec.value(c))
	}
	args = append(args, rec.pk)

	query := q.Rebind(m.updateSQL)
	m.log.Debug().Str("sql", query).Any("pk", rec.pk).Msg("update")
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mapper: update %s: %w", m.desc.Table(), err)
	}
	return nil
}

func (m *Mapper) insert(ctx context.Context, q sqlx.ExtContext, rec *Record) (pk any, err error) {
	defer m.observe("save_insert", time.Now(), &err)

	key := m.desc.PrimaryKey()
	cols := m.desc.Writable()
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = rec.value(c)
	}

	if !key.AutoIncrement {
		// Natural keys are supplied by the caller.
		pk = rec.value(key.Name)
		if pk == nil {
			return nil, fmt.Errorf("mapper: insert %s: primary key %q has no value", m.desc.Table(), key.Name)
		}
		query := q.Rebind(storage.BuildInsert(m.dialect.QuoteIdent, m.desc.Table(), cols, storage.InsertOptions{}))
		m.log.Debug().Str("sql", query).Msg("insert")
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("mapper: insert %s: %w", m.desc.Table(), err)
		}
		rec.pk = pk
		return pk, nil
	}

	stmt, returning := m.dialect.InsertSQL(m.desc.Table(), cols, key.Name)
	query := q.Rebind(stmt)
	m.log.Debug().Str("sql", query).Bool("returning", returning).Msg("insert")

	var id int64
	if returning {
		if err := q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return nil, fmt.Errorf("mapper: insert %s: %w", m.desc.Table(), err)
		}
	} else {
		res, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("mapper: insert %s: %w", m.desc.Table(), err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("mapper: insert %s: read generated key: %w", m.desc.Table(), err)
		}
	}

	rec.pk = id
	rec.attrs[key.Name] = id
	return id, nil
}

// Delete removes the row for rec and clears its primary-key value, so a later
// Save inserts a new row. It returns ErrNotFound when no row was removed.
func (m *Mapper) Delete(ctx context.Context, q sqlx.ExtContext, rec *Record) (err error) {
	if err := m.own(rec); err != nil {
		return err
	}
	if !rec.Saved() {
		return fmt.Errorf("mapper: delete %s: %w", m.desc.Table(), ErrNotSaved)
	}
	defer m.observe("delete", time.Now(), &err)

	query := q.Rebind(m.deleteSQL)
	m.log.Debug().Str("sql", query).Any("pk", rec.pk).Msg("delete")
	res, err := q.ExecContext(ctx, query, rec.pk)
	if err != nil {
		return fmt.Errorf("mapper: delete %s: %w", m.desc.Table(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mapper: delete %s %v: %w", m.desc.Table(), rec.pk, ErrNotFound)
	}

	key := m.desc.PrimaryKey()
	rec.pk = nil
	if key.AutoIncrement {
		delete(rec.attrs, key.Name)
	}
	return nil
}

// GetByPrimaryKey loads the row whose primary key equals value into a new
// saved Record.
func (m *Mapper) GetByPrimaryKey(ctx context.Context, q sqlx.ExtContext, value any) (rec *Record, err error) {
	defer m.observe("get", time.Now(), &err)

	query := q.Rebind(m.selectSQL)
	m.log.Debug().Str("sql", query).Any("pk", value).Msg("get")

	row := make(map[string]any, len(m.desc.Columns()))
	if err := q.QueryRowxContext(ctx, query, value).MapScan(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("mapper: get %s %v: %w", m.desc.Table(), value, ErrNotFound)
		}
		return nil, fmt.Errorf("mapper: get %s %v: %w", m.desc.Table(), value, err)
	}

	rec = &Record{m: m, attrs: make(map[string]any, len(row))}
	for k, v := range row {
		col, ok := m.desc.Column(k)
		if !ok {
			continue
		}
		// Drivers hand back TEXT as []byte too; only binary columns keep it.
		if b, ok := v.([]byte); ok && !col.Binary() {
			v = string(b)
		}
		rec.attrs[k] = v
	}
	rec.pk = rec.attrs[m.desc.PrimaryKey().Name]
	if rec.pk == nil {
		rec.pk = value
	}
	return rec, nil
}

func (m *Mapper) own(rec *Record) error {
	if rec == nil || rec.m != m {
		return ErrForeignRecord
	}
	return nil
}

// observe records metrics for one operation; err points at the named result.
func (m *Mapper) observe(op string, start time.Time, err *error) {
	metrics.RecordOp(m.desc.Table(), op, *err, time.Since(start))
	if *err != nil {
		m.log.Debug().Err(*err).Str("op", op).Msg("operation failed")
	}
}
