// Package tables describes destination tables and provisions them.
package tables

import (
	"strings"

	"github.com/withObsrvr/oracle-persist/internal/storage"
)

// Column is one column of a destination table.
type Column struct {
	Name     string
	Type     storage.ColumnType
	Nullable bool
}

// Table describes a destination table. Tables with Serial set get a
// generated "id" primary key that is not part of Columns.
type Table struct {
	Name    string
	Serial  bool
	Columns []Column
}

// Col is shorthand for a NOT NULL column.
func Col(name string, t storage.ColumnType) Column {
	return Column{Name: name, Type: t}
}

// NullCol is shorthand for a nullable column.
func NullCol(name string, t storage.ColumnType) Column {
	return Column{Name: name, Type: t, Nullable: true}
}

// ColumnNames returns the insertable column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// CreateStatement renders an idempotent CREATE TABLE for dialect d.
func (t Table) CreateStatement(d storage.Dialect) string {
	defs := make([]string, 0, len(t.Columns)+1)
	if t.Serial {
		defs = append(defs, d.SerialPrimaryKey())
	}
	for _, c := range t.Columns {
		def := c.Name + " " + d.ColumnType(c.Type)
		if c.Nullable {
			def += " NULL"
		} else {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(t.Name)
	sb.WriteString(" (\n\t")
	sb.WriteString(strings.Join(defs, ",\n\t"))
	sb.WriteString("\n)")
	return sb.String()
}
