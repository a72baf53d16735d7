package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/syssam/sqlrecord/dialect"
)

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Opener opens physical connections.
type Opener interface {
	Open(ctx context.Context) (Conn, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Conn, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context) (Conn, error) { return f(ctx) }

// Conn is a single physical connection.
type Conn interface {
	ExecQuerier
	BeginTx(ctx context.Context, opts *TxOptions) (Tx, error)
	Close() error
}

// Tx is a physical transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in BeginTx.
	TxOptions = sql.TxOptions
)

// Driver is an Opener over a database/sql handle and the dialect it speaks.
type Driver struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// Open opens a database handle with the dialect's driver and wraps it.
func Open(d dialect.Dialect, source string) (*Driver, error) {
	db, err := d.CreateConnection(source)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open %s: %w", d.Name(), err)
	}
	return OpenDB(d, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(d dialect.Dialect, db *sql.DB) *Driver {
	return &Driver{db: db, dialect: d}
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB { return d.db }

// Dialect returns the dialect of the driver.
func (d *Driver) Dialect() dialect.Dialect { return d.dialect }

// Open implements Opener. The returned connection is pinned from the pool
// until it is closed.
func (d *Driver) Open(ctx context.Context) (Conn, error) {
	c, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open connection: %w", err)
	}
	return &conn{c}, nil
}

// Close closes the underlying database handle.
func (d *Driver) Close() error { return d.db.Close() }

// conn adapts *sql.Conn to Conn.
type conn struct {
	*sql.Conn
}

// BeginTx implements Conn.
func (c *conn) BeginTx(ctx context.Context, opts *TxOptions) (Tx, error) {
	tx, err := c.Conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: begin: %w", err)
	}
	return tx, nil
}

// QueryScalar runs query and scans the first column of the first row into v.
func QueryScalar(ctx context.Context, ex ExecQuerier, query string, args []any, v any) error {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	// Multi-statement batches may produce leading result sets without rows.
	for {
		if rows.Next() {
			err := rows.Scan(v)
			return errors.Join(err, rows.Close())
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Join(err, rows.Close())
	}
	return errors.Join(sql.ErrNoRows, rows.Close())
}

var (
	_ Opener = (*Driver)(nil)
	_ Conn   = (*conn)(nil)
	_ Tx     = (*sql.Tx)(nil)
)
