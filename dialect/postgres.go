package dialect

import (
	"database/sql"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver.
	_ "github.com/lib/pq"              // registers the "postgres" driver.
)

var postgresTypes = map[PortableType]string{
	TypeString:     "varchar",
	TypeAnsiString: "varchar",
	TypeText:       "text",
	TypeBoolean:    "boolean",
	TypeByte:       "smallint",
	TypeInt16:      "smallint",
	TypeInt32:      "integer",
	TypeInt64:      "bigint",
	TypeSingle:     "real",
	TypeDouble:     "double precision",
	TypeDecimal:    "numeric",
	TypeCurrency:   "money",
	TypeDateTime:   "timestamp",
	TypeDate:       "date",
	TypeTime:       "time",
	TypeGUID:       "uuid",
	TypeBinary:     "bytea",
	TypeXML:        "xml",
}

// PostgresDialect is the PostgreSQL dialect. Both lib/pq and pgx bind
// parameters by ordinal, so placeholders take the $n form.
type PostgresDialect struct {
	name     string
	driver   string
	types    map[PortableType]string
	identity bool
}

// NewPostgres returns the PostgreSQL dialect over the lib/pq driver.
func NewPostgres(opts ...Option) *PostgresDialect {
	return newPostgres(Postgres, "postgres", opts)
}

// NewPGX returns the PostgreSQL dialect over the pgx stdlib driver.
func NewPGX(opts ...Option) *PostgresDialect {
	return newPostgres(PGX, "pgx", opts)
}

func newPostgres(name, driver string, opts []Option) *PostgresDialect {
	o := buildOptions(opts)
	return &PostgresDialect{
		name:     name,
		driver:   driver,
		types:    o.typeMap(postgresTypes),
		identity: o.identityOr(false),
	}
}

// Name implements Dialect.
func (d *PostgresDialect) Name() string { return d.name }

// DriverName implements Dialect.
func (d *PostgresDialect) DriverName() string { return d.driver }

// QuoteIdentifier implements Dialect.
func (*PostgresDialect) QuoteIdentifier(name string) (string, error) {
	return Quote(name, `"`, `"`)
}

// ParameterName implements Dialect.
func (*PostgresDialect) ParameterName(name string) (string, error) {
	return NamedParameter(name, ":")
}

// ParameterPlaceholder implements Dialect.
func (d *PostgresDialect) ParameterPlaceholder(name string, ordinal int) (string, error) {
	if _, err := d.ParameterName(name); err != nil {
		return "", err
	}
	return "$" + strconv.Itoa(ordinal), nil
}

// MapType implements Dialect.
func (d *PostgresDialect) MapType(t PortableType) string {
	return lookupType(d.types, t, "text")
}

// BuildPagedQuery implements Dialect.
func (*PostgresDialect) BuildPagedQuery(inner string, offset, limit int, orderBy string) string {
	return LimitOffsetPaged(inner, offset, limit, orderBy, "all")
}

// BuildTopQuery implements Dialect.
func (*PostgresDialect) BuildTopQuery(inner string, limit int, orderBy string) string {
	return TopLimited(inner, limit, orderBy)
}

// BuildIdentityRetrievalSQL implements Dialect.
func (d *PostgresDialect) BuildIdentityRetrievalSQL(insertSQL string, t PortableType) string {
	return AppendStatement(insertSQL, "select cast(lastval() as "+d.MapType(t)+");")
}

// SupportsSynchronousIdentityRetrieval implements Dialect.
func (d *PostgresDialect) SupportsSynchronousIdentityRetrieval() bool { return d.identity }

// CreateConnection implements Dialect.
func (d *PostgresDialect) CreateConnection(dsn string) (*sql.DB, error) {
	return sql.Open(d.driver, dsn)
}

// CreateCommand implements Dialect.
func (d *PostgresDialect) CreateCommand(text string) *Command { return NewCommand(d, text) }

// CreateParameter implements Dialect.
func (*PostgresDialect) CreateParameter(p *Parameter) any { return p.Value }
