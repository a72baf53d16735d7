package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Parameter is a bound value of a Command.
type Parameter struct {
	Name        string       // Dialect parameter name, e.g. "@Name".
	Placeholder string       // Token written into the command text.
	Property    string       // Entity property the value belongs to.
	Type        PortableType // Declared type, used by Fill.
	Value       any          // nil binds a database NULL.
}

// Command is a parameterized SQL statement bound to a Dialect.
type Command struct {
	Text       string
	Parameters []*Parameter
	dialect    Dialect
}

// NewCommand returns a command with the given text bound to d.
// Dialects return it from CreateCommand.
func NewCommand(d Dialect, text string) *Command {
	return &Command{Text: text, dialect: d}
}

// Dialect returns the dialect the command was created for.
func (c *Command) Dialect() Dialect { return c.dialect }

// AddParameter appends a parameter for property and returns it. Its name and
// placeholder come from the dialect; a name already used by the command gets
// an ordinal suffix so that named engines can bind both.
func (c *Command) AddParameter(property string, t PortableType, value any) (*Parameter, error) {
	name, err := c.dialect.ParameterName(property)
	if err != nil {
		return nil, err
	}
	if c.Parameter(name) != nil {
		name = name + "_" + strconv.Itoa(len(c.Parameters)+1)
	}
	placeholder, err := c.dialect.ParameterPlaceholder(name, len(c.Parameters)+1)
	if err != nil {
		return nil, err
	}
	p := &Parameter{
		Name:        name,
		Placeholder: placeholder,
		Property:    property,
		Type:        t,
		Value:       value,
	}
	c.Parameters = append(c.Parameters, p)
	return p, nil
}

// Parameter returns the parameter with the given name, or nil.
func (c *Command) Parameter(name string) *Parameter {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Args returns the driver arguments in parameter order.
func (c *Command) Args() []any {
	args := make([]any, len(c.Parameters))
	for i, p := range c.Parameters {
		args[i] = c.dialect.CreateParameter(p)
	}
	return args
}

// Values returns the raw parameter values keyed by parameter name.
func (c *Command) Values() map[string]any {
	m := make(map[string]any, len(c.Parameters))
	for _, p := range c.Parameters {
		m[p.Name] = p.Value
	}
	return m
}

// Source provides values by property name for Fill.
type Source interface {
	Lookup(property string) (any, bool)
}

// SourceMap is a Source backed by a map. Lookups fall back to a
// case-insensitive match.
type SourceMap map[string]any

// Lookup implements Source.
func (m SourceMap) Lookup(property string) (any, bool) {
	if v, ok := m[property]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, property) {
			return v, true
		}
	}
	return nil, false
}

// Fill sets every parameter whose property is present in src, coercing the
// value to the parameter's declared type. Parameters missing from src keep
// their current value.
func (c *Command) Fill(src Source) error {
	for _, p := range c.Parameters {
		v, ok := src.Lookup(p.Property)
		if !ok {
			continue
		}
		cv, err := Coerce(v, p.Type)
		if err != nil {
			return fmt.Errorf("dialect: fill %s: %w", p.Name, withParameter(err, p.Property))
		}
		p.Value = cv
	}
	return nil
}

// String returns the command text followed by its bound values, for logging.
func (c *Command) String() string {
	if len(c.Parameters) == 0 {
		return c.Text
	}
	var b strings.Builder
	b.WriteString(c.Text)
	b.WriteString(" [")
	for i, p := range c.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", p.Name, p.Value)
	}
	b.WriteString("]")
	return b.String()
}
