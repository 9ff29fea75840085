// Package schema describes the table an entity maps to: its name and the
// ordered column declarations the mapper and DDL builders work from.
//
// A Descriptor is built once per entity type and passed around by value; it
// replaces per-entity class metadata with a plain data structure.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// DefaultType is the semantic type assumed for columns declared without one.
const DefaultType = "text"

var (
	// ErrNoPrimaryKey is returned when no column is flagged as primary key.
	ErrNoPrimaryKey = errors.New("no primary key column declared")
	// ErrMultiplePrimaryKeys is returned when more than one column is flagged
	// as primary key.
	ErrMultiplePrimaryKeys = errors.New("more than one primary key column declared")
)

// Column declares a single table column.
type Column struct {
	// Name is the column name, used verbatim in SQL (quoted by the dialect).
	Name string
	// Type is the semantic type, e.g. "integer" or "text". Dialects map it
	// onto a concrete SQL type.
	Type string
	// PrimaryKey marks the column identifying a row.
	PrimaryKey bool
	// AutoIncrement marks a column whose value the storage engine assigns
	// on insert. Only valid on the primary key.
	AutoIncrement bool
	// NotNull adds a NOT NULL constraint.
	NotNull bool
}

// Binary reports whether the column holds raw bytes rather than text.
func (c Column) Binary() bool {
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case "blob", "bytes", "binary", "varbinary", "bytea":
		return true
	}
	return false
}

// Descriptor is the validated, immutable description of one table.
type Descriptor struct {
	table   string
	columns []Column
	pk      int
}

// New builds a Descriptor for an explicitly named table.
func New(table string, columns ...Column) (Descriptor, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Descriptor{}, fmt.Errorf("schema: table name must not be empty")
	}
	if len(columns) == 0 {
		return Descriptor{}, fmt.Errorf("schema: table %s: at least one column is required", table)
	}

	cols := make([]Column, len(columns))
	seen := make(map[string]struct{}, len(columns))
	pk := -1
	for i, c := range columns {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return Descriptor{}, fmt.Errorf("schema: table %s: column %d has empty name", table, i)
		}
		if _, dup := seen[c.Name]; dup {
			return Descriptor{}, fmt.Errorf("schema: table %s: duplicate column %q", table, c.Name)
		}
		seen[c.Name] = struct{}{}

		if strings.TrimSpace(c.Type) == "" {
			c.Type = DefaultType
		}
		if c.PrimaryKey {
			if pk >= 0 {
				return Descriptor{}, fmt.Errorf("schema: table %s: %w", table, ErrMultiplePrimaryKeys)
			}
			pk = i
		}
		if c.AutoIncrement && !c.PrimaryKey {
			return Descriptor{}, fmt.Errorf("schema: table %s: autoincrement column %q must be the primary key", table, c.Name)
		}
		cols[i] = c
	}
	if pk < 0 {
		return Descriptor{}, fmt.Errorf("schema: table %s: %w", table, ErrNoPrimaryKey)
	}

	return Descriptor{table: table, columns: cols, pk: pk}, nil
}

// For builds a Descriptor whose table name is the lower-cased type name of
// entity, e.g. model.User -> "user". Pointer types are dereferenced.
func For(entity any, columns ...Column) (Descriptor, error) {
	name := TableNameOf(entity)
	if name == "" {
		return Descriptor{}, fmt.Errorf("schema: cannot derive table name from %T", entity)
	}
	return New(name, columns...)
}

// TableNameOf returns the lower-cased name of entity's (dereferenced) type,
// or "" for unnamed types.
func TableNameOf(entity any) string {
	t := reflect.TypeOf(entity)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return strings.ToLower(t.Name())
}

// Table returns the table name.
func (d Descriptor) Table() string { return d.table }

// Columns returns a copy of the column declarations in declared order.
func (d Descriptor) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// PrimaryKey returns the primary-key column.
func (d Descriptor) PrimaryKey() Column { return d.columns[d.pk] }

// ColumnNames returns all column names in declared order.
func (d Descriptor) ColumnNames() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.Name
	}
	return out
}

// Writable returns the names of columns supplied by the caller on INSERT and
// UPDATE, i.e. all non-autoincrement columns, in declared order.
func (d Descriptor) Writable() []string {
	out := make([]string, 0, len(d.columns))
	for _, c := range d.columns {
		if c.AutoIncrement {
			continue
		}
		out = append(out, c.Name)
	}
	return out
}

// Has reports whether name is a declared column.
func (d Descriptor) Has(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// Column returns the declaration for name.
func (d Descriptor) Column(name string) (Column, bool) {
	for _, c := range d.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// IsZero reports whether d is the zero Descriptor (never validated).
func (d Descriptor) IsZero() bool { return d.table == "" }
