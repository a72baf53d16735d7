package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect"
)

// Document is the YAML form of a set of table descriptions:
//
//	tables:
//	  - entity: Person
//	    fields:
//	      - property: Id
//	        type: int32
//	        primary: true
//	        auto_increment: true
//	      - property: Name
//	        column: full_name
//	        type: string
type Document struct {
	Tables []TableSpec `yaml:"tables"`
}

// TableSpec describes one table. Name defaults to the pluralized entity.
type TableSpec struct {
	Entity string      `yaml:"entity"`
	Name   string      `yaml:"table,omitempty"`
	Fields []FieldSpec `yaml:"fields"`
}

// FieldSpec describes one field. Column defaults to the property name.
type FieldSpec struct {
	Property      string               `yaml:"property"`
	Column        string               `yaml:"column,omitempty"`
	Type          dialect.PortableType `yaml:"type"`
	Nullable      bool                 `yaml:"nullable,omitempty"`
	Primary       bool                 `yaml:"primary,omitempty"`
	AutoIncrement bool                 `yaml:"auto_increment,omitempty"`
}

// Load decodes table descriptions from r and builds them for d.
func Load(r io.Reader, d dialect.Dialect) ([]*Table, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	tables := make([]*Table, 0, len(doc.Tables))
	for _, spec := range doc.Tables {
		t, err := spec.Build(d)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// LoadFile is Load over the named file.
func LoadFile(path string, d dialect.Dialect) ([]*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	defer f.Close()
	return Load(f, d)
}

// Build returns the table described by s for d.
func (s TableSpec) Build(d dialect.Dialect) (*Table, error) {
	entity := strings.TrimSpace(s.Entity)
	name := strings.TrimSpace(s.Name)
	if entity == "" && name == "" {
		return nil, sqlrecord.NewConfigurationError("table", "entity or table name is required")
	}
	if entity == "" {
		entity = inflect.Singularize(name)
	}
	if name == "" {
		name = inflect.Pluralize(entity)
	}
	t := NewTable(name, d)
	t.entity = entity
	for _, fs := range s.Fields {
		if strings.TrimSpace(fs.Property) == "" {
			return nil, sqlrecord.NewConfigurationError(name, "field property is required")
		}
		f := NewField(fs.Property, fs.Type)
		if fs.Nullable {
			f.Flags |= Nullable
		}
		if fs.Primary {
			f.Flags |= Primary
		}
		if fs.AutoIncrement {
			f.Flags |= AutoIncrement
		}
		f.column = fs.Column
		t.AddField(f)
	}
	return t, nil
}
