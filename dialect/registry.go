package dialect

import (
	"sort"
	"strings"
	"sync"

	"github.com/syssam/sqlrecord"
)

// Factory creates a dialect for a registered provider.
type Factory func(opts ...Option) Dialect

// ambiguous provider names carry no engine information; Resolve sniffs the
// connection string instead.
var ambiguous = map[string]bool{
	"":                  true,
	"odbc":              true,
	"oledb":             true,
	"system.data.odbc":  true,
	"system.data.oledb": true,
}

// Registry maps provider names to dialect factories. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	aliases   map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// Default holds the built-in engines.
var Default = newDefault()

func newDefault() *Registry {
	r := NewRegistry()
	r.Register(SQLServer, func(opts ...Option) Dialect { return NewSQLServer2005(opts...) },
		"mssql", "sqlserver2005", "system.data.sqlclient")
	r.Register(SQLServer2000, func(opts ...Option) Dialect { return NewSQLServer2000(opts...) })
	r.Register(MySQL, func(opts ...Option) Dialect { return NewMySQL(opts...) },
		"mariadb", "mysql.data.mysqlclient")
	r.Register(Postgres, func(opts ...Option) Dialect { return NewPostgres(opts...) },
		"postgresql", "npgsql")
	r.Register(PGX, func(opts ...Option) Dialect { return NewPGX(opts...) })
	r.Register(SQLite, func(opts ...Option) Dialect { return NewSQLite(opts...) },
		"sqlite3", "system.data.sqlite")
	return r
}

// Register adds a factory under name and its aliases, replacing any previous
// registration. Names are case-insensitive.
func (r *Registry) Register(name string, f Factory, aliases ...string) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = f
	for _, a := range aliases {
		r.aliases[strings.ToLower(strings.TrimSpace(a))] = key
	}
}

// Lookup returns the factory registered under name or one of its aliases.
func (r *Registry) Lookup(name string) (Factory, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	f, ok := r.factories[key]
	return f, ok
}

// Names returns the registered canonical names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the dialect for provider. Empty or engine-neutral provider
// names (ODBC, OLE DB) are resolved by sniffing the connection string.
func (r *Registry) Resolve(provider, connectionString string, opts ...Option) (Dialect, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	if ambiguous[name] {
		sniffed, ok := Sniff(connectionString)
		if !ok {
			return nil, sqlrecord.NewProviderNotSupportedError(provider, r.Names())
		}
		name = sniffed
	}
	f, ok := r.Lookup(name)
	if !ok {
		return nil, sqlrecord.NewProviderNotSupportedError(provider, r.Names())
	}
	return f(opts...), nil
}

// Resolve resolves provider against the Default registry.
func Resolve(provider, connectionString string, opts ...Option) (Dialect, error) {
	return Default.Resolve(provider, connectionString, opts...)
}
