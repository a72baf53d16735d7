// Package gen generates record mappings for Go structs.
//
// The pipeline is:
//
//	go/packages (type-checked structs)
//	        ↓
//	   Entity (fields, portable types, key flags)
//	        ↓
//	   jennifer file per entity
//	        ↓
//	   goimports + parallel write
//
// A struct is picked up when any of its fields carries a sqlrecord tag, or
// when it is named explicitly:
//
//	type Person struct {
//	    ID   int64  `sqlrecord:",pk,auto"`
//	    Name string `sqlrecord:"full_name"`
//	    Age  *int32
//	    Note string `sqlrecord:"-"`
//	}
//
// Tag options are pk, auto, nullable and type=<portable type>. Pointer fields
// are nullable. A field named ID or Id becomes the primary key when no field
// is tagged pk, and is auto-increment when it is an integer.
//
// For each entity the generated file declares a mapping, a table builder
// cached per dialect and a New<Entity>Record constructor.
package gen
