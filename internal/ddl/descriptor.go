package ddl

import "recordmap/internal/schema"

// FromDescriptor converts a schema.Descriptor into a TableDef, mapping each
// column's semantic type through mapType. Column order is preserved.
func FromDescriptor(d schema.Descriptor, mapType func(string) string) TableDef {
	cols := d.Columns()
	defs := make([]ColumnDef, 0, len(cols))
	for _, c := range cols {
		defs = append(defs, ColumnDef{
			Name:          c.Name,
			SQLType:       mapType(c.Type),
			Nullable:      !c.NotNull,
			PrimaryKey:    c.PrimaryKey,
			AutoIncrement: c.AutoIncrement,
		})
	}
	return TableDef{FQN: d.Table(), Columns: defs}
}
