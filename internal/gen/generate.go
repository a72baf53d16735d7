package gen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
)

const (
	dialectPkg = "github.com/syssam/sqlrecord/dialect"
	schemaPkg  = "github.com/syssam/sqlrecord/schema"
	recordPkg  = "github.com/syssam/sqlrecord/record"
	sqlPkg     = "github.com/syssam/sqlrecord/dialect/sql"
)

// File is one generated source file.
type File struct {
	Name    string // base file name
	Dir     string
	Content []byte // unformatted
}

// Generate renders the record file for every entity of pkg.
func Generate(cfg *Config, pkg *Package) ([]File, error) {
	files := make([]File, 0, len(pkg.Entities))
	for _, e := range pkg.Entities {
		f := jen.NewFilePathName(pkg.Path, pkg.Name)
		if cfg.Header != "" {
			f.HeaderComment(cfg.Header)
		}
		genEntity(f, e)
		var buf bytes.Buffer
		if err := f.Render(&buf); err != nil {
			return nil, NewEntityError(e.Name, "", "render", err)
		}
		files = append(files, File{
			Name:    strings.ToLower(e.Name) + cfg.Suffix,
			Dir:     pkg.Dir,
			Content: buf.Bytes(),
		})
	}
	return files, nil
}

func genEntity(f *jen.File, e *Entity) {
	mapping := e.Name + "Mapping"
	registry := lowerFirst(e.Name) + "Tables"

	f.Commentf("%s maps the properties of %s for records.", mapping, e.Name)
	f.Var().Id(mapping).Op("=").Qual(schemaPkg, "NewMapping").Types(jen.Id(e.Name)).Call()

	f.Var().Id(registry).Op("=").Qual(schemaPkg, "NewRegistry").Call()

	f.Func().Id("init").Params().BlockFunc(func(g *jen.Group) {
		for _, fd := range e.Fields {
			ctor, ptr := "Prop", jen.Op("*")
			if fd.Pointer {
				ctor, ptr = "NullableProp", jen.Op("**")
			}
			g.Qual(schemaPkg, ctor).Call(
				jen.Id(mapping),
				jen.Lit(fd.Name),
				jen.Func().Params(jen.Id("e").Op("*").Id(e.Name)).Add(ptr).Add(goType(fd)).Block(
					jen.Return(jen.Op("&").Id("e").Dot(fd.Name)),
				),
			)
		}
	})

	f.Commentf("%sTable returns the %s table for d.", e.Name, e.Table)
	f.Func().Id(e.Name+"Table").Params(jen.Id("d").Qual(dialectPkg, "Dialect")).Params(
		jen.Op("*").Qual(schemaPkg, "Table"), jen.Error(),
	).Block(
		jen.Return(jen.Qual(schemaPkg, "TableOf").Types(jen.Id(e.Name)).Call(
			jen.Id(registry), jen.Id("d"), jen.Id("build"+e.Name+"Table"),
		)),
	)

	f.Func().Id("build"+e.Name+"Table").Params(jen.Id("d").Qual(dialectPkg, "Dialect")).Params(
		jen.Op("*").Qual(schemaPkg, "Table"), jen.Error(),
	).Block(
		jen.Return(jen.Qual(schemaPkg, "NewTable").CallFunc(func(g *jen.Group) {
			g.Lit(e.Table)
			g.Id("d")
			for _, fd := range e.Fields {
				g.Line().Add(fieldCode(fd))
			}
			g.Line()
		}), jen.Nil()),
	)

	f.Commentf("New%sRecord wraps v in a record in the added state.", e.Name)
	f.Func().Id("New"+e.Name+"Record").Params(
		jen.Id("d").Qual(dialectPkg, "Dialect"),
		jen.Id("v").Op("*").Id(e.Name),
		jen.Id("o").Qual(sqlPkg, "Opener"),
	).Params(
		jen.Op("*").Qual(recordPkg, "Record").Types(jen.Id(e.Name)), jen.Error(),
	).Block(
		jen.List(jen.Id("t"), jen.Err()).Op(":=").Id(e.Name+"Table").Call(jen.Id("d")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Qual(recordPkg, "New").Call(jen.Id("t"), jen.Id(mapping), jen.Id("v"), jen.Id("o")), jen.Nil()),
	)
}

func fieldCode(fd *Field) jen.Code {
	args := []jen.Code{jen.Lit(fd.Name), jen.Qual(dialectPkg, typeConst(fd))}
	for _, flag := range fd.Flags() {
		args = append(args, jen.Qual(schemaPkg, flag))
	}
	c := jen.Qual(schemaPkg, "NewField").Call(args...)
	if fd.Column != "" {
		c = c.Dot("StorageKey").Call(jen.Lit(fd.Column))
	}
	return c
}

// typeConst returns the dialect constant name for the field type.
func typeConst(fd *Field) string {
	name := fd.Type.String()
	switch name {
	case "ansistring":
		return "TypeAnsiString"
	case "datetime":
		return "TypeDateTime"
	case "guid":
		return "TypeGUID"
	case "xml":
		return "TypeXML"
	}
	return "Type" + strings.ToUpper(name[:1]) + name[1:]
}

func goType(fd *Field) jen.Code {
	switch fd.GoType {
	case "time.Time":
		return jen.Qual("time", "Time")
	case "uuid.UUID":
		return jen.Qual("github.com/google/uuid", "UUID")
	case "[]byte":
		return jen.Index().Byte()
	}
	return jen.Id(fd.GoType)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Source renders e as a standalone file in package pkg. It is used by tests
// and by the CLI dry-run.
func Source(pkgPath, pkgName string, e *Entity) (string, error) {
	f := jen.NewFilePathName(pkgPath, pkgName)
	genEntity(f, e)
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("recordgen: render %s: %w", e.Name, err)
	}
	return buf.String(), nil
}
