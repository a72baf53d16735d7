package sql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrecord/dialect"
)

func TestConstraintErrors(t *testing.T) {
	tests := []struct {
		name                     string
		err                      error
		unique, foreignKey, check bool
	}{
		{name: "Nil"},
		{name: "Other", err: errors.New("connection reset")},
		{name: "PqUnique", err: &pq.Error{Code: "23505"}, unique: true},
		{name: "PqForeignKey", err: &pq.Error{Code: "23503"}, foreignKey: true},
		{name: "PgxCheck", err: &pgconn.PgError{Code: "23514"}, check: true},
		{name: "PgxUniqueWrapped", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), unique: true},
		{name: "MySQLDuplicate", err: &mysql.MySQLError{Number: 1062}, unique: true},
		{name: "MySQLParent", err: &mysql.MySQLError{Number: 1451}, foreignKey: true},
		{name: "MySQLCheck", err: &mysql.MySQLError{Number: 3819}, check: true},
		{name: "MySQLOther", err: &mysql.MySQLError{Number: 1045}},
		{name: "MSSQLPrimaryKey", err: mssql.Error{Number: 2627}, unique: true},
		{name: "MSSQLForeignKey", err: mssql.Error{Number: 547, Message: "The INSERT statement conflicted with the FOREIGN KEY constraint"}, foreignKey: true},
		{name: "MSSQLCheck", err: mssql.Error{Number: 547, Message: "The INSERT statement conflicted with the CHECK constraint"}, check: true},
		{name: "SQLiteMessage", err: errors.New("UNIQUE constraint failed: people.name"), unique: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, IsUniqueConstraintError(tt.err))
			assert.Equal(t, tt.foreignKey, IsForeignKeyConstraintError(tt.err))
			assert.Equal(t, tt.check, IsCheckConstraintError(tt.err))
			assert.Equal(t, tt.unique || tt.foreignKey || tt.check, IsConstraintError(tt.err))
		})
	}
}

func TestConstraintErrorSQLite(t *testing.T) {
	ctx := context.Background()
	drv, err := Open(dialect.NewSQLite(), ":memory:")
	require.NoError(t, err)
	defer drv.Close()
	c, err := drv.Open(ctx)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ExecContext(ctx, `create table people (id integer primary key, name text unique, age integer check (age >= 0))`)
	require.NoError(t, err)
	_, err = c.ExecContext(ctx, `insert into people (name, age) values ('ann', 1)`)
	require.NoError(t, err)

	_, err = c.ExecContext(ctx, `insert into people (name, age) values ('ann', 2)`)
	require.Error(t, err)
	assert.True(t, IsUniqueConstraintError(err))

	_, err = c.ExecContext(ctx, `insert into people (name, age) values ('bob', -1)`)
	require.Error(t, err)
	assert.True(t, IsCheckConstraintError(err))
}
