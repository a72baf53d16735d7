package dialect

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver.
)

var mysqlTypes = map[PortableType]string{
	TypeString:     "varchar(255)",
	TypeAnsiString: "varchar(255)",
	TypeText:       "longtext",
	TypeBoolean:    "tinyint(1)",
	TypeByte:       "tinyint unsigned",
	TypeInt16:      "smallint",
	TypeInt32:      "int",
	TypeInt64:      "bigint",
	TypeSingle:     "float",
	TypeDouble:     "double",
	TypeDecimal:    "decimal(19,5)",
	TypeCurrency:   "decimal(19,4)",
	TypeDateTime:   "datetime",
	TypeDate:       "date",
	TypeTime:       "time",
	TypeGUID:       "char(36)",
	TypeBinary:     "longblob",
	TypeXML:        "longtext",
}

// mysqlUnbounded is the documented spelling of "all remaining rows".
const mysqlUnbounded = "18446744073709551615"

// MySQLDialect is the MySQL and MariaDB dialect. The driver binds positional
// "?" placeholders and rejects parameterized multi-statement batches, so
// generated keys are not read back in the insert round trip by default.
type MySQLDialect struct {
	types    map[PortableType]string
	identity bool
}

// NewMySQL returns the MySQL dialect.
func NewMySQL(opts ...Option) *MySQLDialect {
	o := buildOptions(opts)
	return &MySQLDialect{
		types:    o.typeMap(mysqlTypes),
		identity: o.identityOr(false),
	}
}

// Name implements Dialect.
func (*MySQLDialect) Name() string { return MySQL }

// DriverName implements Dialect.
func (*MySQLDialect) DriverName() string { return "mysql" }

// QuoteIdentifier implements Dialect.
func (*MySQLDialect) QuoteIdentifier(name string) (string, error) {
	return Quote(name, "`", "`")
}

// ParameterName implements Dialect.
func (*MySQLDialect) ParameterName(name string) (string, error) {
	return NamedParameter(name, "@")
}

// ParameterPlaceholder implements Dialect.
func (d *MySQLDialect) ParameterPlaceholder(name string, _ int) (string, error) {
	if _, err := d.ParameterName(name); err != nil {
		return "", err
	}
	return "?", nil
}

// MapType implements Dialect.
func (d *MySQLDialect) MapType(t PortableType) string {
	return lookupType(d.types, t, "longtext")
}

// BuildPagedQuery implements Dialect.
func (*MySQLDialect) BuildPagedQuery(inner string, offset, limit int, orderBy string) string {
	return LimitOffsetPaged(inner, offset, limit, orderBy, mysqlUnbounded)
}

// BuildTopQuery implements Dialect.
func (*MySQLDialect) BuildTopQuery(inner string, limit int, orderBy string) string {
	return TopLimited(inner, limit, orderBy)
}

// BuildIdentityRetrievalSQL implements Dialect. MySQL casts only to a small
// set of target types, so integer keys are read back as signed.
func (d *MySQLDialect) BuildIdentityRetrievalSQL(insertSQL string, t PortableType) string {
	target := "signed"
	if !t.Integer() {
		target = d.MapType(t)
	}
	return AppendStatement(insertSQL, "select cast(last_insert_id() as "+target+");")
}

// SupportsSynchronousIdentityRetrieval implements Dialect.
func (d *MySQLDialect) SupportsSynchronousIdentityRetrieval() bool { return d.identity }

// CreateConnection implements Dialect.
func (d *MySQLDialect) CreateConnection(dsn string) (*sql.DB, error) {
	return sql.Open(d.DriverName(), dsn)
}

// CreateCommand implements Dialect.
func (d *MySQLDialect) CreateCommand(text string) *Command { return NewCommand(d, text) }

// CreateParameter implements Dialect.
func (*MySQLDialect) CreateParameter(p *Parameter) any { return p.Value }
