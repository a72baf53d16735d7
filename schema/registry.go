package schema

import (
	"reflect"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/sqlrecord/dialect"
)

// BuildFunc describes an entity's table for d.
type BuildFunc func(d dialect.Dialect) (*Table, error)

// Registry caches table descriptions per entity and dialect configuration.
// Two instances of one engine share a table only when they generate the same
// commands, so NewSQLServer2005() and NewSQLServer2005(WithIdentityRetrieval(false))
// are cached apart. Concurrent first lookups of the same key share one build.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	group  singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// registryKey names entity for d by the dialect name and the settings that
// shape generated commands: identity retrieval and the type map.
func registryKey(entity string, d dialect.Dialect) string {
	var b strings.Builder
	b.WriteString(entity)
	b.WriteByte(0)
	b.WriteString(d.Name())
	if d.SupportsSynchronousIdentityRetrieval() {
		b.WriteString("\x00identity")
	}
	for t := dialect.TypeUnknown; t <= dialect.TypeXML; t++ {
		b.WriteByte(0)
		b.WriteString(d.MapType(t))
	}
	return b.String()
}

// Table returns the cached table of entity for d, building it on first use.
// A failed build is not cached.
func (r *Registry) Table(entity string, d dialect.Dialect, build BuildFunc) (*Table, error) {
	key := registryKey(entity, d)
	r.mu.RLock()
	t, ok := r.tables[key]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}
	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.RLock()
		t, ok := r.tables[key]
		r.mu.RUnlock()
		if ok {
			return t, nil
		}
		t, err := build(d)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.tables[key] = t
		r.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Add stores t under its entity name and dialect, replacing any cached
// table.
func (r *Registry) Add(t *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[registryKey(t.entity, t.dialect)] = t
}

// Len returns the number of cached tables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// TableOf returns the cached table of entity type T for d.
func TableOf[T any](r *Registry, d dialect.Dialect, build BuildFunc) (*Table, error) {
	return r.Table(reflect.TypeFor[T]().String(), d, build)
}
