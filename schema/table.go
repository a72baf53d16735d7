package schema

import (
	"sync"

	"golang.org/x/text/cases"

	"github.com/syssam/sqlrecord/dialect"
)

// Table describes an entity's table: its name, dialect and ordered fields.
// Property lookups are case-insensitive.
type Table struct {
	name    string
	entity  string
	dialect dialect.Dialect
	fields  []*Field
	index   map[string]int

	mu     sync.Mutex
	quoted string
	pk     *Field
	pkDone bool
}

// NewTable returns a table named name for d holding fields.
func NewTable(name string, d dialect.Dialect, fields ...*Field) *Table {
	t := &Table{
		name:    name,
		entity:  name,
		dialect: d,
		index:   make(map[string]int),
	}
	for _, f := range fields {
		t.AddField(f)
	}
	return t
}

func fold(s string) string { return cases.Fold().String(s) }

// Name returns the unquoted table name.
func (t *Table) Name() string { return t.name }

// Entity returns the entity name the table was described for.
func (t *Table) Entity() string { return t.entity }

// Dialect returns the table's dialect.
func (t *Table) Dialect() dialect.Dialect { return t.dialect }

// AddField adds f to the table. A field whose property matches an existing
// one case-insensitively replaces it in place.
func (t *Table) AddField(f *Field) *Table {
	f.table = t
	key := fold(f.Property)
	if i, ok := t.index[key]; ok {
		t.fields[i].table = nil
		t.fields[i] = f
	} else {
		t.index[key] = len(t.fields)
		t.fields = append(t.fields, f)
	}
	t.invalidate()
	return t
}

// Fields returns the fields in table order.
func (t *Table) Fields() []*Field {
	return append([]*Field(nil), t.fields...)
}

// Field returns the field for property.
func (t *Table) Field(property string) (*Field, bool) {
	i, ok := t.index[fold(property)]
	if !ok {
		return nil, false
	}
	return t.fields[i], true
}

// QuotedName returns the table name quoted by the dialect. The result is
// cached.
func (t *Table) QuotedName() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quoted != "" {
		return t.quoted, nil
	}
	q, err := t.dialect.QuoteIdentifier(t.name)
	if err != nil {
		return "", err
	}
	t.quoted = q
	return q, nil
}

// PrimaryKey returns the first field flagged as primary. The result is
// cached.
func (t *Table) PrimaryKey() (*Field, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pkDone {
		t.pk = nil
		for _, f := range t.fields {
			if f.Primary() {
				t.pk = f
				break
			}
		}
		t.pkDone = true
	}
	return t.pk, t.pk != nil
}

// invalidate drops the cached names.
func (t *Table) invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.quoted = ""
	t.pk = nil
	t.pkDone = false
}
