package ddl

// ColumnDef is one rendered column. Name is unquoted; renderers quote it.
// Default is a raw SQL expression.
type ColumnDef struct {
	Name          string
	SQLType       string
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	Default       string
}

// TableDef is a table name, optionally dotted ("schema.table"), and its
// columns in order.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
