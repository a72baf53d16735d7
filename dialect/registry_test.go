package dialect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrecord"
)

func TestRegistryResolve(t *testing.T) {
	tests := []struct {
		provider, dsn string
		want          string
	}{
		{"sqlserver", "", SQLServer},
		{"MSSQL", "", SQLServer},
		{"System.Data.SqlClient", "", SQLServer},
		{"sqlserver2000", "", SQLServer2000},
		{"mariadb", "", MySQL},
		{"PostgreSQL", "", Postgres},
		{"npgsql", "", Postgres},
		{"pgx", "", PGX},
		{"sqlite3", "", SQLite},
		{"", "Server=.;Database=app;Compatibility Level=80", SQLServer2000},
		{"odbc", "host=localhost dbname=app user=me", Postgres},
		{"OleDb", "Data Source=app.db;Version=3", SQLite},
	}
	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.dsn, func(t *testing.T) {
			d, err := Resolve(tt.provider, tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestRegistryResolveOptions(t *testing.T) {
	d, err := Resolve("sqlserver", "", WithIdentityRetrieval(false))
	require.NoError(t, err)
	assert.False(t, d.SupportsSynchronousIdentityRetrieval())
}

func TestRegistryUnknownProvider(t *testing.T) {
	_, err := Resolve("oracle", "")
	require.Error(t, err)
	assert.True(t, sqlrecord.IsProviderNotSupported(err))
	var pe *sqlrecord.ProviderNotSupportedError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "oracle", pe.Provider)
	assert.Equal(t, []string{"mysql", "pgx", "postgres", "sqlite", "sqlserver", "sqlserver2000"}, pe.Available)

	_, err = Resolve("", "gibberish")
	assert.True(t, sqlrecord.IsProviderNotSupported(err))
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())
	r.Register("Lite", func(opts ...Option) Dialect { return NewSQLite(opts...) }, "embedded")
	assert.Equal(t, []string{"lite"}, r.Names())

	d, err := r.Resolve("EMBEDDED", "")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d.Name())

	_, err = r.Resolve("sqlserver", "")
	assert.True(t, sqlrecord.IsProviderNotSupported(err), "registries are independent")
}

func TestSniff(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
		ok   bool
	}{
		{"sqlserver://sa:pw@localhost:1433?database=app", SQLServer, true},
		{"sqlserver://sa:pw@localhost?database=app&compatibility=80", SQLServer2000, true},
		{"postgres://u@localhost/app?sslmode=disable", Postgres, true},
		{"postgresql://u@localhost/app", Postgres, true},
		{"user:pw@tcp(127.0.0.1:3306)/app?parseTime=true", MySQL, true},
		{"file:test.db?cache=shared", SQLite, true},
		{":memory:", SQLite, true},
		{"/var/data/app.sqlite3", SQLite, true},
		{"Data Source=app.db;Version=3", SQLite, true},
		{"Server=localhost;Database=app;User Id=sa", SQLServer, true},
		{"Host=localhost;Database=app;Username=u", Postgres, true},
		{"host=localhost dbname=app", Postgres, true},
		{"nonsense", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, ok := Sniff(tt.dsn)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
