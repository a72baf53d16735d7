package dialect

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver.
)

var sqliteTypes = map[PortableType]string{
	TypeString:     "text",
	TypeAnsiString: "text",
	TypeText:       "text",
	TypeBoolean:    "integer",
	TypeByte:       "integer",
	TypeInt16:      "integer",
	TypeInt32:      "integer",
	TypeInt64:      "integer",
	TypeSingle:     "real",
	TypeDouble:     "real",
	TypeDecimal:    "numeric",
	TypeCurrency:   "numeric",
	TypeDateTime:   "datetime",
	TypeDate:       "date",
	TypeTime:       "time",
	TypeGUID:       "text",
	TypeBinary:     "blob",
	TypeXML:        "text",
}

// SQLiteDialect is the SQLite dialect over the pure Go modernc driver.
type SQLiteDialect struct {
	types    map[PortableType]string
	identity bool
}

// NewSQLite returns the SQLite dialect.
func NewSQLite(opts ...Option) *SQLiteDialect {
	o := buildOptions(opts)
	return &SQLiteDialect{
		types:    o.typeMap(sqliteTypes),
		identity: o.identityOr(true),
	}
}

// Name implements Dialect.
func (*SQLiteDialect) Name() string { return SQLite }

// DriverName implements Dialect.
func (*SQLiteDialect) DriverName() string { return "sqlite" }

// QuoteIdentifier implements Dialect.
func (*SQLiteDialect) QuoteIdentifier(name string) (string, error) {
	return Quote(name, `"`, `"`)
}

// ParameterName implements Dialect.
func (*SQLiteDialect) ParameterName(name string) (string, error) {
	return NamedParameter(name, "@")
}

// ParameterPlaceholder implements Dialect.
func (d *SQLiteDialect) ParameterPlaceholder(name string, _ int) (string, error) {
	return d.ParameterName(name)
}

// MapType implements Dialect.
func (d *SQLiteDialect) MapType(t PortableType) string {
	return lookupType(d.types, t, "text")
}

// BuildPagedQuery implements Dialect.
func (*SQLiteDialect) BuildPagedQuery(inner string, offset, limit int, orderBy string) string {
	return LimitOffsetPaged(inner, offset, limit, orderBy, "-1")
}

// BuildTopQuery implements Dialect.
func (*SQLiteDialect) BuildTopQuery(inner string, limit int, orderBy string) string {
	return TopLimited(inner, limit, orderBy)
}

// BuildIdentityRetrievalSQL implements Dialect.
func (d *SQLiteDialect) BuildIdentityRetrievalSQL(insertSQL string, t PortableType) string {
	return AppendStatement(insertSQL, "select cast(last_insert_rowid() as "+d.MapType(t)+");")
}

// SupportsSynchronousIdentityRetrieval implements Dialect.
func (d *SQLiteDialect) SupportsSynchronousIdentityRetrieval() bool { return d.identity }

// CreateConnection implements Dialect.
func (d *SQLiteDialect) CreateConnection(dsn string) (*sql.DB, error) {
	return sql.Open(d.DriverName(), dsn)
}

// CreateCommand implements Dialect.
func (d *SQLiteDialect) CreateCommand(text string) *Command { return NewCommand(d, text) }

// CreateParameter implements Dialect.
func (*SQLiteDialect) CreateParameter(p *Parameter) any {
	return sql.Named(strings.TrimPrefix(p.Name, "@"), p.Value)
}
