package dialect

import (
	"database/sql"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // registers the "sqlserver" driver.
)

var sqlServer2005Types = map[PortableType]string{
	TypeString:     "nvarchar(4000)",
	TypeAnsiString: "varchar(8000)",
	TypeText:       "nvarchar(max)",
	TypeBoolean:    "bit",
	TypeByte:       "tinyint",
	TypeInt16:      "smallint",
	TypeInt32:      "int",
	TypeInt64:      "bigint",
	TypeSingle:     "real",
	TypeDouble:     "float",
	TypeDecimal:    "decimal(19,5)",
	TypeCurrency:   "money",
	TypeDateTime:   "datetime",
	TypeDate:       "datetime",
	TypeTime:       "datetime",
	TypeGUID:       "uniqueidentifier",
	TypeBinary:     "varbinary(max)",
	TypeXML:        "xml",
}

var sqlServer2000Types = map[PortableType]string{
	TypeString:     "nvarchar(4000)",
	TypeAnsiString: "varchar(8000)",
	TypeText:       "ntext",
	TypeBoolean:    "bit",
	TypeByte:       "tinyint",
	TypeInt16:      "smallint",
	TypeInt32:      "int",
	TypeInt64:      "bigint",
	TypeSingle:     "real",
	TypeDouble:     "float",
	TypeDecimal:    "decimal(19,5)",
	TypeCurrency:   "money",
	TypeDateTime:   "datetime",
	TypeDate:       "datetime",
	TypeTime:       "datetime",
	TypeGUID:       "uniqueidentifier",
	TypeBinary:     "image",
	TypeXML:        "ntext",
}

// SQLServerDialect is the Microsoft SQL Server dialect. The 2005 variant
// pages with a row_number() window; the 2000 variant, which has no window
// functions, pages with nested TOP clauses.
type SQLServerDialect struct {
	name     string
	types    map[PortableType]string
	text     string
	identity bool
	paged    func(inner string, offset, limit int, orderBy string) string
}

// NewSQLServer2005 returns the dialect for SQL Server 2005 and later.
func NewSQLServer2005(opts ...Option) *SQLServerDialect {
	o := buildOptions(opts)
	return &SQLServerDialect{
		name:     SQLServer,
		types:    o.typeMap(sqlServer2005Types),
		text:     "nvarchar(max)",
		identity: o.identityOr(true),
		paged:    RankPaged,
	}
}

// NewSQLServer2000 returns the dialect for SQL Server 2000.
func NewSQLServer2000(opts ...Option) *SQLServerDialect {
	o := buildOptions(opts)
	return &SQLServerDialect{
		name:     SQLServer2000,
		types:    o.typeMap(sqlServer2000Types),
		text:     "ntext",
		identity: o.identityOr(true),
		paged:    NestedTopPaged,
	}
}

// Name implements Dialect.
func (d *SQLServerDialect) Name() string { return d.name }

// DriverName implements Dialect.
func (*SQLServerDialect) DriverName() string { return "sqlserver" }

// QuoteIdentifier implements Dialect.
func (*SQLServerDialect) QuoteIdentifier(name string) (string, error) {
	return Quote(name, "[", "]")
}

// ParameterName implements Dialect.
func (*SQLServerDialect) ParameterName(name string) (string, error) {
	return NamedParameter(name, "@")
}

// ParameterPlaceholder implements Dialect.
func (d *SQLServerDialect) ParameterPlaceholder(name string, _ int) (string, error) {
	return d.ParameterName(name)
}

// MapType implements Dialect.
func (d *SQLServerDialect) MapType(t PortableType) string {
	return lookupType(d.types, t, d.text)
}

// BuildPagedQuery implements Dialect.
func (d *SQLServerDialect) BuildPagedQuery(inner string, offset, limit int, orderBy string) string {
	return d.paged(inner, offset, limit, orderBy)
}

// BuildTopQuery implements Dialect.
func (*SQLServerDialect) BuildTopQuery(inner string, limit int, orderBy string) string {
	return TopPrefixed(inner, limit, orderBy)
}

// BuildIdentityRetrievalSQL implements Dialect.
func (d *SQLServerDialect) BuildIdentityRetrievalSQL(insertSQL string, t PortableType) string {
	return AppendStatement(insertSQL, "select cast(scope_identity() as "+d.MapType(t)+");")
}

// SupportsSynchronousIdentityRetrieval implements Dialect.
func (d *SQLServerDialect) SupportsSynchronousIdentityRetrieval() bool { return d.identity }

// CreateConnection implements Dialect.
func (d *SQLServerDialect) CreateConnection(dsn string) (*sql.DB, error) {
	return sql.Open(d.DriverName(), dsn)
}

// CreateCommand implements Dialect.
func (d *SQLServerDialect) CreateCommand(text string) *Command { return NewCommand(d, text) }

// CreateParameter implements Dialect.
func (*SQLServerDialect) CreateParameter(p *Parameter) any {
	return sql.Named(strings.TrimPrefix(p.Name, "@"), p.Value)
}
