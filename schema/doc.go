// Package schema describes how entities map to tables and generates the
// parameterized commands that read and write them.
//
// A Table holds ordered fields bound to one dialect. Property names are
// matched case-insensitively and a later field with the same property
// replaces the earlier one in place:
//
//	people := schema.NewTable("People", dialect.NewSQLServer2005(),
//	    schema.NewField("Id", dialect.TypeInt32, schema.Primary, schema.AutoIncrement),
//	    schema.NewField("Name", dialect.TypeString),
//	    schema.NewField("Age", dialect.TypeInt32, schema.Nullable),
//	)
//
// Entities are read and written through the Entity interface. Mapping
// registers explicit accessors for a struct type once, and Values serves
// map-shaped data:
//
//	var personMapping = schema.NewMapping[Person]()
//
//	func init() {
//	    schema.Prop(personMapping, "Id", func(p *Person) *int { return &p.ID })
//	    schema.Prop(personMapping, "Name", func(p *Person) *string { return &p.Name })
//	    schema.NullableProp(personMapping, "Age", func(p *Person) **int { return &p.Age })
//	}
//
//	cmd, err := people.BuildInsert(personMapping.Bind(&p))
//
// # Inserts
//
// BuildInsert skips auto-increment fields. A NULL value is bound for a
// nullable field and leaves a non-nullable field out of the statement, so
// the column default applies. When the primary key is auto-increment and the
// dialect returns identities in the same batch, the identity select is
// appended to the statement.
//
// # Filtering
//
// Eq binds its value as a parameter. UnsafeRaw appends a fragment verbatim
// and must never carry untrusted input.
//
// # Descriptions
//
// Registry caches tables per entity and dialect. Load reads table
// descriptions from YAML; see Document for the format.
package schema
