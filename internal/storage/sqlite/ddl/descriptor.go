package ddl

import (
	gddl "recordmap/internal/ddl"
	"recordmap/internal/schema"
)

// FromDescriptor derives a SQLite-oriented TableDef from a schema descriptor,
// mapping each semantic type through MapType.
func FromDescriptor(d schema.Descriptor) gddl.TableDef {
	return gddl.FromDescriptor(d, MapType)
}
