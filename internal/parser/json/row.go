package json

import (
	"bytes"
	"encoding/json"

	"recordmap/pkg/records"
)

// Row is one top-level element of a JSON document. An object keeps its keys
// in document order in Keys and Values. Any other element is held in Value
// and Keys is nil.
type Row struct {
	Keys   []string
	Values []any

	Value  any
	scalar bool
}

// ValueRow wraps a non-object element.
func ValueRow(v any) Row { return Row{Value: v, scalar: true} }

// IsObject reports whether the row came from a JSON object.
func (r Row) IsObject() bool { return !r.scalar }

// Len returns the number of fields.
func (r Row) Len() int { return len(r.Keys) }

// Get returns the value for key and whether it is present.
func (r Row) Get(key string) (any, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Record returns the row as an unordered records.Record.
func (r Row) Record() records.Record {
	out := make(records.Record, len(r.Keys))
	for i, k := range r.Keys {
		out[k] = r.Values[i]
	}
	return out
}

// set assigns key, keeping the position of its first occurrence.
func (r *Row) set(key string, v any) {
	for i, k := range r.Keys {
		if k == key {
			r.Values[i] = v
			return
		}
	}
	r.Keys = append(r.Keys, key)
	r.Values = append(r.Values, v)
}

// MarshalJSON encodes the row as it appeared in the document, with object
// keys in document order.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.scalar {
		return json.Marshal(r.Value)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
