package storage

import "strings"

// InsertOptions tweaks the INSERT text produced by BuildInsert.
type InsertOptions struct {
	// Output is placed between the column list and VALUES, e.g.
	// "OUTPUT INSERTED.[id]" for SQL Server.
	Output string
	// Suffix is appended after the VALUES list, e.g. `RETURNING "id"`.
	Suffix string
	// EmptyValues replaces "DEFAULT VALUES" when cols is empty, e.g.
	// "() VALUES ()" for MySQL.
	EmptyValues string
}

// BuildInsert renders INSERT INTO table (cols...) VALUES (?, ...) with
// identifiers quoted by quote. With no columns it falls back to DEFAULT VALUES
// (or opt.EmptyValues) so rows made only of generated values can be inserted.
func BuildInsert(quote func(string) string, table string, cols []string, opt InsertOptions) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(quote(table))

	if len(cols) == 0 {
		if opt.Output != "" {
			sb.WriteByte(' ')
			sb.WriteString(opt.Output)
		}
		sb.WriteByte(' ')
		if opt.EmptyValues != "" {
			sb.WriteString(opt.EmptyValues)
		} else {
			sb.WriteString("DEFAULT VALUES")
		}
	} else {
		quoted := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = quote(c)
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteByte(')')
		if opt.Output != "" {
			sb.WriteByte(' ')
			sb.WriteString(opt.Output)
		}
		sb.WriteString(" VALUES (")
		sb.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
		sb.WriteByte(')')
	}

	if opt.Suffix != "" {
		sb.WriteByte(' ')
		sb.WriteString(opt.Suffix)
	}
	return sb.String()
}
