package dialect

import (
	"database/sql"
)

// Dialect names of the built-in engines.
const (
	SQLServer     = "sqlserver"
	SQLServer2000 = "sqlserver2000"
	MySQL         = "mysql"
	Postgres      = "postgres"
	PGX           = "pgx"
	SQLite        = "sqlite"
)

// Dialect hides per-engine SQL differences behind one contract. Implementations
// are immutable values and safe for concurrent use.
type Dialect interface {
	// Name returns the registry name of the dialect (e.g. "sqlserver").
	Name() string

	// DriverName returns the database/sql driver used by CreateConnection.
	DriverName() string

	// QuoteIdentifier wraps name in the engine's identifier delimiters.
	// It is idempotent: an already delimited side is left untouched.
	QuoteIdentifier(name string) (string, error)

	// ParameterName derives a named-parameter token from a (possibly dotted)
	// field path, e.g. "Customer.First Name" -> "@First_Name".
	ParameterName(name string) (string, error)

	// ParameterPlaceholder returns the token written into command text for the
	// parameter at the given 1-based ordinal.
	ParameterPlaceholder(name string, ordinal int) (string, error)

	// MapType returns the native type keyword for a portable type code.
	MapType(t PortableType) string

	// BuildPagedQuery wraps inner to return rows [offset, offset+limit)
	// ordered by orderBy. A negative limit means unbounded.
	BuildPagedQuery(inner string, offset, limit int, orderBy string) string

	// BuildTopQuery restricts inner to its first limit rows.
	BuildTopQuery(inner string, limit int, orderBy string) string

	// BuildIdentityRetrievalSQL appends the statement reading the identity
	// generated by insertSQL, cast to the native type of t.
	BuildIdentityRetrievalSQL(insertSQL string, t PortableType) string

	// SupportsSynchronousIdentityRetrieval reports whether an insert can read
	// back its generated key in the same round trip.
	SupportsSynchronousIdentityRetrieval() bool

	// CreateConnection opens a database handle for the engine's driver.
	CreateConnection(dsn string) (*sql.DB, error)

	// CreateCommand returns an empty command bound to the dialect.
	CreateCommand(text string) *Command

	// CreateParameter converts a command parameter to a driver argument.
	CreateParameter(p *Parameter) any
}

// Option configures a built-in dialect at construction.
type Option func(*options)

type options struct {
	identity *bool
	types    map[PortableType]string
}

// WithIdentityRetrieval overrides whether the dialect appends an identity
// retrieval statement to inserts of auto-increment keys.
func WithIdentityRetrieval(enabled bool) Option {
	return func(o *options) {
		o.identity = &enabled
	}
}

// WithTypes overrides native type keywords for the given portable types.
func WithTypes(types map[PortableType]string) Option {
	return func(o *options) {
		if o.types == nil {
			o.types = make(map[PortableType]string, len(types))
		}
		for k, v := range types {
			o.types[k] = v
		}
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// identity returns the configured identity flag or def.
func (o options) identityOr(def bool) bool {
	if o.identity != nil {
		return *o.identity
	}
	return def
}

// typeMap merges the overrides into a copy of base.
func (o options) typeMap(base map[PortableType]string) map[PortableType]string {
	m := make(map[PortableType]string, len(base)+len(o.types))
	for k, v := range base {
		m[k] = v
	}
	for k, v := range o.types {
		m[k] = v
	}
	return m
}

// lookupType returns the keyword for t in m, or def when unknown.
func lookupType(m map[PortableType]string, t PortableType, def string) string {
	if kw, ok := m[t]; ok {
		return kw
	}
	return def
}
