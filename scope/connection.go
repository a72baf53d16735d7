package scope

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect/sql"
)

// ConnectionScope shares one physical connection between nested units of
// work. The connection is opened by the first Open and closed when the last
// handle is released.
//
// A scope is not safe for concurrent use; confine it to one call chain.
type ConnectionScope struct {
	opener sql.Opener
	conn   sql.Conn
	opens  int
	tx     *TransactionScope
}

// New returns a closed scope over o.
func New(o sql.Opener) *ConnectionScope {
	return &ConnectionScope{opener: o}
}

// Open acquires the scope's connection, opening it physically if this is the
// outermost acquisition. The returned handle must be closed.
func (s *ConnectionScope) Open(ctx context.Context) (*ConnectionHandle, error) {
	if s.opens == 0 {
		c, err := s.opener.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("scope: open: %w", err)
		}
		s.conn = c
	}
	s.opens++
	return &ConnectionHandle{scope: s}, nil
}

// IsOpen reports whether the physical connection is open.
func (s *ConnectionScope) IsOpen() bool { return s.opens > 0 }

// Depth returns the number of outstanding connection handles.
func (s *ConnectionScope) Depth() int { return s.opens }

// Conn returns the physical connection, or nil when the scope is closed.
func (s *ConnectionScope) Conn() sql.Conn { return s.conn }

// Transaction returns the active transaction scope, or nil.
func (s *ConnectionScope) Transaction() *TransactionScope { return s.tx }

// ExecQuerier returns the active transaction, or the connection when no
// transaction is active. It fails when the scope is closed or its
// transaction was rolled back while handles are still outstanding.
func (s *ConnectionScope) ExecQuerier() (sql.ExecQuerier, error) {
	if s.opens == 0 {
		return nil, sqlrecord.NewTransactionStateError("exec", "connection scope is not open")
	}
	if t := s.tx; t != nil {
		if t.rolledBack {
			return nil, sqlrecord.NewTransactionStateError("exec", "transaction was rolled back")
		}
		return t.tx, nil
	}
	return s.conn, nil
}

// ConnectionHandle is one acquisition of a ConnectionScope.
type ConnectionHandle struct {
	scope  *ConnectionScope
	closed bool
}

// Scope returns the scope the handle belongs to.
func (h *ConnectionHandle) Scope() *ConnectionScope { return h.scope }

// Close releases the handle. The last release rolls back any transaction
// still outstanding and closes the physical connection. Close is idempotent.
func (h *ConnectionHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	s := h.scope
	s.opens--
	if s.opens > 0 {
		return nil
	}
	var err error
	if t := s.tx; t != nil {
		err = t.rollback()
		s.tx = nil
	}
	if cerr := s.conn.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("scope: close: %w", cerr))
	}
	s.conn = nil
	return err
}
