package schema

import (
	"strings"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect"
)

// Flag marks a field as nullable, primary or auto-increment.
type Flag uint8

// Field flags.
const (
	Nullable Flag = 1 << iota
	Primary
	AutoIncrement
)

// Field describes how one entity property maps to a column.
type Field struct {
	Property string
	Type     dialect.PortableType
	Flags    Flag
	column   string
	table    *Table // back reference for dialect lookups; never owns the table
}

// NewField returns a field whose column name equals its property name.
func NewField(property string, t dialect.PortableType, flags ...Flag) *Field {
	f := &Field{Property: property, Type: t}
	for _, flag := range flags {
		f.Flags |= flag
	}
	return f
}

// StorageKey sets the column name and returns the field.
func (f *Field) StorageKey(column string) *Field {
	f.SetColumn(column)
	return f
}

// Has reports whether the field carries flag.
func (f *Field) Has(flag Flag) bool { return f.Flags&flag != 0 }

// Nullable reports whether the column accepts NULL.
func (f *Field) Nullable() bool { return f.Has(Nullable) }

// Primary reports whether the field is flagged as primary key.
func (f *Field) Primary() bool { return f.Has(Primary) }

// AutoIncrement reports whether the engine assigns the value on insert.
func (f *Field) AutoIncrement() bool { return f.Has(AutoIncrement) }

// Column returns the column name.
func (f *Field) Column() string {
	if f.column == "" {
		return f.Property
	}
	return f.column
}

// SetColumn renames the column, dropping names cached by the parent table.
func (f *Field) SetColumn(column string) {
	f.column = column
	if f.table != nil {
		f.table.invalidate()
	}
}

// Table returns the table the field was added to, or nil.
func (f *Field) Table() *Table { return f.table }

// QuotedColumn returns the column name quoted by the table's dialect.
func (f *Field) QuotedColumn() (string, error) {
	if f.table == nil {
		return "", sqlrecord.NewConfigurationError(f.Property, "field is not attached to a table")
	}
	if strings.TrimSpace(f.Column()) == "" {
		return "", sqlrecord.NewConfigurationError(f.table.name, "field name cannot be empty")
	}
	return f.table.dialect.QuoteIdentifier(f.Column())
}
