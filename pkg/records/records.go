// Package records defines the attribute-bag representation shared by the
// mapper and the JSON loader.
package records

// Record maps column (or JSON object) keys to values.
type Record map[string]any

// Clone returns a shallow copy of r. A nil Record clones to an empty one.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
