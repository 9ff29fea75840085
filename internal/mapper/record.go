package mapper

import (
	"fmt"

	"recordmap/pkg/records"
)

// Record is one in-memory instance of the entity a Mapper describes.
//
// Attribute names are restricted to the declared columns. The primary-key
// value is tracked separately from the attributes: it is set by Save on
// insert, by GetByPrimaryKey, and cleared by Delete. A Record with no
// primary-key value is unsaved.
type Record struct {
	m     *Mapper
	attrs records.Record
	pk    any
}

// NewRecord returns an unsaved Record holding attrs. Every key must be a
// declared column.
func (m *Mapper) NewRecord(attrs map[string]any) (*Record, error) {
	r := &Record{m: m, attrs: make(records.Record, len(attrs))}
	for k, v := range attrs {
		if err := r.Set(k, v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Set assigns v to column name.
func (r *Record) Set(name string, v any) error {
	if !r.m.desc.Has(name) {
		return fmt.Errorf("mapper: %s.%s: %w", r.m.desc.Table(), name, ErrUnknownColumn)
	}
	r.attrs[name] = v
	return nil
}

// Get returns the value of column name and whether it has been set.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// PrimaryKey returns the primary-key value, or nil for an unsaved record.
func (r *Record) PrimaryKey() any { return r.pk }

// Saved reports whether the record carries a primary-key value.
func (r *Record) Saved() bool { return r.pk != nil }

// Values returns a copy of the attributes.
func (r *Record) Values() records.Record { return r.attrs.Clone() }

// value returns the attribute for name, nil when unset.
func (r *Record) value(name string) any { return r.attrs[name] }
