package scope

import (
	"context"
	"fmt"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect/sql"
)

// TransactionScope shares one physical transaction between nested units of
// work on a ConnectionScope. It commits when every handle has completed and
// never commits once any handle rolled back.
type TransactionScope struct {
	conn       *ConnectionScope
	tx         sql.Tx
	count      int
	rolledBack bool
}

// Begin acquires the scope's transaction, beginning it physically if this is
// the outermost acquisition. opts apply only to the physical begin. The
// returned handle must be closed; closing a handle that was not completed
// rolls the transaction back.
func (s *ConnectionScope) Begin(ctx context.Context, opts *sql.TxOptions) (*TransactionHandle, error) {
	if s.opens == 0 {
		return nil, sqlrecord.NewTransactionStateError("begin", "connection scope is not open")
	}
	if s.tx == nil {
		s.tx = &TransactionScope{conn: s}
	}
	t := s.tx
	if t.rolledBack {
		return nil, sqlrecord.NewTransactionStateError("begin", "transaction was rolled back and still has open handles")
	}
	if t.count == 0 {
		tx, err := s.conn.BeginTx(ctx, opts)
		if err != nil {
			s.tx = nil
			return nil, fmt.Errorf("scope: begin: %w", err)
		}
		t.tx = tx
	}
	t.count++
	return &TransactionHandle{scope: t}, nil
}

// Tx returns the physical transaction, or nil once it has ended.
func (t *TransactionScope) Tx() sql.Tx { return t.tx }

// Depth returns the number of outstanding transaction handles.
func (t *TransactionScope) Depth() int { return t.count }

// RolledBack reports whether the transaction was rolled back.
func (t *TransactionScope) RolledBack() bool { return t.rolledBack }

// release drops one handle and detaches the scope from its connection when
// none remain.
func (t *TransactionScope) release() {
	t.count--
	if t.count == 0 && t.conn.tx == t {
		t.conn.tx = nil
	}
}

// rollback ends the physical transaction once.
func (t *TransactionScope) rollback() error {
	if t.rolledBack {
		return nil
	}
	t.rolledBack = true
	tx := t.tx
	t.tx = nil
	if tx == nil {
		return nil
	}
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("scope: rollback: %w", err)
	}
	return nil
}

// TransactionHandle is one acquisition of a TransactionScope.
type TransactionHandle struct {
	scope *TransactionScope
	done  bool
}

// Scope returns the transaction scope the handle belongs to.
func (h *TransactionHandle) Scope() *TransactionScope { return h.scope }

// Complete marks the handle's unit of work as successful and releases it.
// The physical transaction commits when the last handle completes. Complete
// fails with a TransactionStateError if the handle was already released or
// the transaction was rolled back.
func (h *TransactionHandle) Complete() error {
	if h.done {
		return sqlrecord.NewTransactionStateError("complete", "handle already released")
	}
	t := h.scope
	if t.rolledBack {
		return sqlrecord.NewTransactionStateError("complete", "transaction was rolled back")
	}
	if t.tx == nil {
		return sqlrecord.NewTransactionStateError("complete", "transaction no longer exists")
	}
	h.done = true
	if t.count > 1 {
		t.release()
		return nil
	}
	tx := t.tx
	t.tx = nil
	t.release()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("scope: commit: %w", err)
	}
	return nil
}

// Rollback immediately rolls back the physical transaction, whatever the
// nesting depth, and releases the handle. Later Complete calls on other
// handles of the same transaction fail.
func (h *TransactionHandle) Rollback() error {
	if h.done {
		return sqlrecord.NewTransactionStateError("rollback", "handle already released")
	}
	h.done = true
	err := h.scope.rollback()
	h.scope.release()
	return err
}

// Close releases the handle, rolling the transaction back if the handle was
// not completed. Close is idempotent.
func (h *TransactionHandle) Close() error {
	if h.done {
		return nil
	}
	return h.Rollback()
}
