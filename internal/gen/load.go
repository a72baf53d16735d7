package gen

import (
	"context"
	"fmt"
	"go/types"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Package is a loaded Go package with its mapped entities.
type Package struct {
	Name     string
	Path     string
	Dir      string
	Entities []*Entity
}

// Load type-checks the configured packages and collects their entities.
func Load(ctx context.Context, cfg *Config) ([]*Package, error) {
	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Dir:     cfg.Dir,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedTypes,
	}, cfg.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("recordgen: load %s: %w", strings.Join(cfg.Patterns, " "), err)
	}
	var errs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			// Stale generated files are rewritten by this run.
			if strings.Contains(e.Pos, cfg.Suffix) {
				continue
			}
			errs = append(errs, e.Error())
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("recordgen: load: %s", strings.Join(errs, "; "))
	}

	wanted := map[string]bool{}
	for _, n := range cfg.Types {
		wanted[n] = false
	}
	var out []*Package
	for _, p := range pkgs {
		pkg := &Package{Name: p.Name, Path: p.PkgPath}
		if len(p.GoFiles) > 0 {
			pkg.Dir = filepath.Dir(p.GoFiles[0])
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || obj.IsAlias() {
				continue
			}
			st, ok := obj.Type().Underlying().(*types.Struct)
			if !ok {
				continue
			}
			if len(cfg.Types) > 0 {
				if _, ok := wanted[name]; !ok {
					continue
				}
				wanted[name] = true
			} else if !hasTag(st) {
				continue
			}
			e, err := NewEntity(obj)
			if err != nil {
				return nil, err
			}
			pkg.Entities = append(pkg.Entities, e)
		}
		if len(pkg.Entities) > 0 {
			out = append(out, pkg)
		}
	}
	var missing []string
	for n, found := range wanted {
		if !found {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, NewConfigError("Types", strings.Join(missing, ","), "types not found")
	}
	return out, nil
}
