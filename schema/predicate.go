package schema

import (
	"strings"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect"
)

// Predicate is a condition of a WHERE clause.
type Predicate interface {
	// build writes the condition into cmd's parameter list and returns its
	// text.
	build(t *Table, cmd *dialect.Command) (string, error)
}

type eqPredicate struct {
	property string
	value    any
}

// Eq matches rows whose column for property equals value. A nil value
// matches NULL.
func Eq(property string, value any) Predicate {
	return eqPredicate{property: property, value: value}
}

func (p eqPredicate) build(t *Table, cmd *dialect.Command) (string, error) {
	f, ok := t.Field(p.property)
	if !ok {
		return "", sqlrecord.NewConfigurationError(t.name, "unknown property "+p.property)
	}
	col, err := f.QuotedColumn()
	if err != nil {
		return "", err
	}
	if p.value == nil {
		return col + " is null", nil
	}
	param, err := cmd.AddParameter(f.Property, f.Type, p.value)
	if err != nil {
		return "", err
	}
	return col + " = " + param.Placeholder, nil
}

type rawPredicate string

// UnsafeRaw appends fragment to the WHERE clause verbatim. The fragment is
// neither quoted nor parameterized; never build it from untrusted input.
func UnsafeRaw(fragment string) Predicate {
	return rawPredicate(fragment)
}

func (p rawPredicate) build(*Table, *dialect.Command) (string, error) {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return "", sqlrecord.NewConfigurationError("predicate", "raw predicate cannot be empty")
	}
	return "(" + s + ")", nil
}

// where renders preds joined by "and", or "" when there are none.
func where(t *Table, cmd *dialect.Command, preds []Predicate) (string, error) {
	if len(preds) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		s, err := p.build(t, cmd)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return " where " + strings.Join(parts, " and "), nil
}
