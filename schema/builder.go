package schema

import (
	"database/sql/driver"
	"strings"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect"
)

// BuildSelect returns a select of every field's column, filtered by preds.
func (t *Table) BuildSelect(preds ...Predicate) (*dialect.Command, error) {
	if len(t.fields) == 0 {
		return nil, sqlrecord.NewConfigurationError(t.name, "table has no fields")
	}
	name, err := t.QuotedName()
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		col, err := f.QuotedColumn()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	cmd := t.dialect.CreateCommand("")
	cond, err := where(t, cmd, preds)
	if err != nil {
		return nil, err
	}
	cmd.Text = "select " + strings.Join(cols, ", ") + " from " + name + cond
	return cmd, nil
}

// BuildPagedSelect returns the rows [offset, offset+limit) of BuildSelect
// ordered by sort. An empty sort orders by the primary key.
func (t *Table) BuildPagedSelect(offset, limit int, sort string, preds ...Predicate) (*dialect.Command, error) {
	order, err := t.orderBy(sort)
	if err != nil {
		return nil, err
	}
	if order == "" {
		return nil, sqlrecord.NewConfigurationError(t.name, "paged select requires a sort expression or a primary key")
	}
	cmd, err := t.BuildSelect(preds...)
	if err != nil {
		return nil, err
	}
	cmd.Text = t.dialect.BuildPagedQuery(cmd.Text, offset, limit, order)
	return cmd, nil
}

// BuildTopSelect returns the first limit rows of BuildSelect. An empty sort
// orders by the primary key when there is one.
func (t *Table) BuildTopSelect(limit int, sort string, preds ...Predicate) (*dialect.Command, error) {
	order, err := t.orderBy(sort)
	if err != nil {
		return nil, err
	}
	cmd, err := t.BuildSelect(preds...)
	if err != nil {
		return nil, err
	}
	cmd.Text = t.dialect.BuildTopQuery(cmd.Text, limit, order)
	return cmd, nil
}

func (t *Table) orderBy(sort string) (string, error) {
	if s := strings.TrimSpace(sort); s != "" {
		return s, nil
	}
	pk, ok := t.PrimaryKey()
	if !ok {
		return "", nil
	}
	return pk.QuotedColumn()
}

// BuildInsert returns the insert of e. Auto-increment fields are skipped, and
// a field is left out only when its value is NULL and the column does not
// accept NULL. When the primary key is auto-increment and the dialect can
// return identities in the same batch, the identity select is appended.
func (t *Table) BuildInsert(e Entity) (*dialect.Command, error) {
	name, err := t.QuotedName()
	if err != nil {
		return nil, err
	}
	cmd := t.dialect.CreateCommand("")
	var cols, params []string
	for _, f := range t.fields {
		if f.AutoIncrement() {
			continue
		}
		v := value(e, f.Property)
		if v == nil && !f.Nullable() {
			continue
		}
		col, err := f.QuotedColumn()
		if err != nil {
			return nil, err
		}
		p, err := cmd.AddParameter(f.Property, f.Type, v)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		params = append(params, p.Placeholder)
	}
	var b strings.Builder
	b.WriteString("insert into ")
	b.WriteString(name)
	switch {
	case len(cols) > 0:
		b.WriteString(" (" + strings.Join(cols, ", ") + ") values (" + strings.Join(params, ", ") + ");")
	case t.dialect.Name() == dialect.MySQL:
		b.WriteString(" () values ();")
	default:
		b.WriteString(" default values;")
	}
	cmd.Text = b.String()
	if pk, ok := t.PrimaryKey(); ok && pk.AutoIncrement() && t.dialect.SupportsSynchronousIdentityRetrieval() {
		cmd.Text = t.dialect.BuildIdentityRetrievalSQL(cmd.Text, pk.Type)
	}
	return cmd, nil
}

// BuildUpdate returns the update of every non-key column of e, matched on the
// primary key.
func (t *Table) BuildUpdate(e Entity) (*dialect.Command, error) {
	pk, name, err := t.keyed("update")
	if err != nil {
		return nil, err
	}
	cmd := t.dialect.CreateCommand("")
	var sets []string
	for _, f := range t.fields {
		if f == pk {
			continue
		}
		col, err := f.QuotedColumn()
		if err != nil {
			return nil, err
		}
		p, err := cmd.AddParameter(f.Property, f.Type, value(e, f.Property))
		if err != nil {
			return nil, err
		}
		sets = append(sets, col+" = "+p.Placeholder)
	}
	if len(sets) == 0 {
		return nil, sqlrecord.NewConfigurationError(t.name, "update requires a non-key field")
	}
	cond, err := keyCondition(cmd, pk, e)
	if err != nil {
		return nil, err
	}
	cmd.Text = "update " + name + " set " + strings.Join(sets, ", ") + cond + ";"
	return cmd, nil
}

// BuildDelete returns the delete of e, matched on the primary key.
func (t *Table) BuildDelete(e Entity) (*dialect.Command, error) {
	pk, name, err := t.keyed("delete")
	if err != nil {
		return nil, err
	}
	cmd := t.dialect.CreateCommand("")
	cond, err := keyCondition(cmd, pk, e)
	if err != nil {
		return nil, err
	}
	cmd.Text = "delete from " + name + cond + ";"
	return cmd, nil
}

// keyed returns the primary key and quoted table name, or a
// ConfigurationError naming op when the table has no key.
func (t *Table) keyed(op string) (*Field, string, error) {
	pk, ok := t.PrimaryKey()
	if !ok {
		return nil, "", sqlrecord.NewConfigurationError(t.name, op+" requires a primary key")
	}
	name, err := t.QuotedName()
	if err != nil {
		return nil, "", err
	}
	return pk, name, nil
}

func keyCondition(cmd *dialect.Command, pk *Field, e Entity) (string, error) {
	col, err := pk.QuotedColumn()
	if err != nil {
		return "", err
	}
	p, err := cmd.AddParameter(pk.Property, pk.Type, value(e, pk.Property))
	if err != nil {
		return "", err
	}
	return " where " + col + " = " + p.Placeholder, nil
}

// value returns the entity's value for property, with unknown properties
// and NULL valuers read as nil.
func value(e Entity, property string) any {
	v, ok := e.Get(property)
	if !ok || v == nil {
		return nil
	}
	if valuer, ok := v.(driver.Valuer); ok {
		if dv, err := valuer.Value(); err == nil && dv == nil {
			return nil
		}
	}
	return v
}
