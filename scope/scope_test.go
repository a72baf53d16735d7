package scope

import (
	"context"
	stdsql "database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect"
	"github.com/syssam/sqlrecord/dialect/sql"
)

// fakeOpener counts physical operations.
type fakeOpener struct {
	opens, closes, begins, commits, rollbacks int
	execs                                     []string
	openErr                                   error
}

func (f *fakeOpener) Open(context.Context) (sql.Conn, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens++
	return &fakeConn{f: f}, nil
}

type fakeExec struct{ f *fakeOpener }

func (e fakeExec) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	e.f.execs = append(e.f.execs, query)
	return driver.RowsAffected(1), nil
}

// queryable rejects queries; the fakes only execute statements.
type queryable struct{}

func (queryable) QueryContext(context.Context, string, ...any) (*stdsql.Rows, error) {
	return nil, errors.New("not supported")
}

func (queryable) QueryRowContext(context.Context, string, ...any) *stdsql.Row {
	return nil
}

type fakeConn struct {
	f *fakeOpener
	queryable
}

func (c *fakeConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return fakeExec{c.f}.ExecContext(ctx, query, args...)
}

func (c *fakeConn) BeginTx(context.Context, *sql.TxOptions) (sql.Tx, error) {
	c.f.begins++
	return &fakeTx{f: c.f}, nil
}

func (c *fakeConn) Close() error {
	c.f.closes++
	return nil
}

type fakeTx struct {
	f *fakeOpener
	queryable
}

func (tx *fakeTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return fakeExec{tx.f}.ExecContext(ctx, "tx: "+query, args...)
}

func (tx *fakeTx) Commit() error {
	tx.f.commits++
	return nil
}

func (tx *fakeTx) Rollback() error {
	tx.f.rollbacks++
	return nil
}

func TestConnectionRefCount(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			f := &fakeOpener{}
			s := New(f)
			handles := make([]*ConnectionHandle, n)
			for i := range handles {
				h, err := s.Open(ctx)
				require.NoError(t, err)
				handles[i] = h
			}
			assert.Equal(t, 1, f.opens)
			assert.Equal(t, n, s.Depth())
			assert.True(t, s.IsOpen())

			for i := n - 1; i >= 0; i-- {
				assert.Equal(t, 0, f.closes, "closed before the last release")
				require.NoError(t, handles[i].Close())
			}
			assert.Equal(t, 1, f.opens)
			assert.Equal(t, 1, f.closes)
			assert.False(t, s.IsOpen())
			assert.Nil(t, s.Conn())

			// Releasing twice is a no-op.
			require.NoError(t, handles[0].Close())
			assert.Equal(t, 1, f.closes)
		})
	}
}

func TestConnectionReopen(t *testing.T) {
	ctx := context.Background()
	f := &fakeOpener{}
	s := New(f)
	h, err := s.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	h, err = s.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	assert.Equal(t, 2, f.opens)
	assert.Equal(t, 2, f.closes)
}

func TestConnectionOpenError(t *testing.T) {
	f := &fakeOpener{openErr: assert.AnError}
	s := New(f)
	_, err := s.Open(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, s.IsOpen())
}

// nested opens a connection and three nested transaction handles.
func nested(t *testing.T, f *fakeOpener) (*ConnectionScope, *ConnectionHandle, [3]*TransactionHandle) {
	t.Helper()
	ctx := context.Background()
	s := New(f)
	ch, err := s.Open(ctx)
	require.NoError(t, err)
	var hs [3]*TransactionHandle
	for i := range hs {
		hs[i], err = s.Begin(ctx, nil)
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.begins)
	require.Equal(t, 3, s.Transaction().Depth())
	return s, ch, hs
}

func TestRollbackDominance(t *testing.T) {
	f := &fakeOpener{}
	s, ch, hs := nested(t, f)
	outer, middle, inner := hs[0], hs[1], hs[2]

	require.NoError(t, inner.Rollback())
	assert.Equal(t, 1, f.rollbacks)
	assert.True(t, s.Transaction().RolledBack())

	err := middle.Complete()
	require.Error(t, err)
	assert.True(t, sqlrecord.IsTransactionStateError(err))
	assert.Equal(t, 0, f.commits)

	err = outer.Complete()
	assert.True(t, sqlrecord.IsTransactionStateError(err))
	assert.Equal(t, 0, f.commits)

	_, err = s.ExecQuerier()
	assert.True(t, sqlrecord.IsTransactionStateError(err), "no statements outside the rolled back transaction")

	_, err = s.Begin(context.Background(), nil)
	assert.True(t, sqlrecord.IsTransactionStateError(err), "begin while rolled back handles remain")

	require.NoError(t, middle.Close())
	require.NoError(t, outer.Close())
	assert.Equal(t, 1, f.rollbacks, "rollback happens once")
	assert.Equal(t, 0, f.commits)
	assert.Nil(t, s.Transaction())

	// A fresh transaction may start once every handle is released.
	th, err := s.Begin(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, th.Complete())
	assert.Equal(t, 1, f.commits)
	require.NoError(t, ch.Close())
}

func TestNestedCompletion(t *testing.T) {
	f := &fakeOpener{}
	s, ch, hs := nested(t, f)

	require.NoError(t, hs[2].Complete())
	assert.Equal(t, 0, f.commits)
	require.NoError(t, hs[1].Complete())
	assert.Equal(t, 0, f.commits)
	require.NoError(t, hs[0].Complete())
	assert.Equal(t, 1, f.commits)
	assert.Equal(t, 0, f.rollbacks)
	assert.Nil(t, s.Transaction())

	for _, h := range hs {
		require.NoError(t, h.Close(), "closing a completed handle is a no-op")
	}
	assert.Equal(t, 0, f.rollbacks)
	require.NoError(t, ch.Close())
	assert.Equal(t, 1, f.closes)
}

func TestCompleteTwice(t *testing.T) {
	f := &fakeOpener{}
	_, ch, hs := nested(t, f)
	defer ch.Close()

	require.NoError(t, hs[2].Complete())
	err := hs[2].Complete()
	assert.True(t, sqlrecord.IsTransactionStateError(err))
	err = hs[2].Rollback()
	assert.True(t, sqlrecord.IsTransactionStateError(err))
	assert.Equal(t, 0, f.rollbacks)
}

func TestCloseWithoutComplete(t *testing.T) {
	f := &fakeOpener{}
	s, ch, hs := nested(t, f)

	require.NoError(t, hs[2].Complete())
	require.NoError(t, hs[1].Close())
	assert.Equal(t, 1, f.rollbacks, "an uncompleted handle rolls back on close")
	assert.True(t, sqlrecord.IsTransactionStateError(hs[0].Complete()))
	require.NoError(t, hs[0].Close())
	assert.Equal(t, 1, f.rollbacks)
	assert.Nil(t, s.Transaction())
	require.NoError(t, ch.Close())
}

func TestBeginRequiresOpenScope(t *testing.T) {
	s := New(&fakeOpener{})
	_, err := s.Begin(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, sqlrecord.IsTransactionStateError(err))
}

func TestConnectionCloseRollsBack(t *testing.T) {
	f := &fakeOpener{}
	s, ch, hs := nested(t, f)

	require.NoError(t, ch.Close())
	assert.Equal(t, 1, f.rollbacks)
	assert.Equal(t, 1, f.closes)
	assert.Nil(t, s.Transaction())
	assert.True(t, sqlrecord.IsTransactionStateError(hs[0].Complete()))
	for _, h := range hs {
		require.NoError(t, h.Close())
	}
	assert.Equal(t, 1, f.rollbacks)
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("Temporary", func(t *testing.T) {
		f := &fakeOpener{}
		err := Do(ctx, f, func(ctx context.Context, ex sql.ExecQuerier) error {
			s, ok := FromContext(ctx)
			require.True(t, ok)
			assert.True(t, s.IsOpen())
			_, err := ex.ExecContext(ctx, "delete from t")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, f.opens)
		assert.Equal(t, 1, f.closes)
		assert.Equal(t, []string{"delete from t"}, f.execs)
	})

	t.Run("Ambient", func(t *testing.T) {
		f := &fakeOpener{}
		s := New(f)
		ch, err := s.Open(ctx)
		require.NoError(t, err)
		ctx := NewContext(ctx, s)
		for i := 0; i < 3; i++ {
			require.NoError(t, Do(ctx, nil, func(ctx context.Context, ex sql.ExecQuerier) error {
				_, err := ex.ExecContext(ctx, "update t")
				return err
			}))
		}
		assert.Equal(t, 1, f.opens)
		assert.Equal(t, 0, f.closes, "an ambient connection stays open")
		require.NoError(t, ch.Close())
		assert.Equal(t, 1, f.closes)
	})

	t.Run("AmbientTransaction", func(t *testing.T) {
		f := &fakeOpener{}
		s := New(f)
		ch, err := s.Open(ctx)
		require.NoError(t, err)
		defer ch.Close()
		th, err := s.Begin(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, Do(NewContext(ctx, s), nil, func(ctx context.Context, ex sql.ExecQuerier) error {
			assert.IsType(t, &fakeTx{}, ex)
			_, err := ex.ExecContext(ctx, "insert into t")
			return err
		}))
		require.NoError(t, th.Complete())
		assert.Equal(t, []string{"tx: insert into t"}, f.execs)
		assert.Equal(t, 1, f.commits)
	})

	t.Run("Error", func(t *testing.T) {
		f := &fakeOpener{}
		err := Do(ctx, f, func(context.Context, sql.ExecQuerier) error { return assert.AnError })
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 1, f.closes)
	})

	t.Run("NoOpener", func(t *testing.T) {
		err := Do(ctx, nil, func(context.Context, sql.ExecQuerier) error { return nil })
		require.Error(t, err)
	})
}

func TestTransact(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		f := &fakeOpener{}
		err := Transact(ctx, f, nil, func(ctx context.Context) error {
			return Transact(ctx, nil, nil, func(ctx context.Context) error {
				return Do(ctx, nil, func(ctx context.Context, ex sql.ExecQuerier) error {
					_, err := ex.ExecContext(ctx, "insert into t")
					return err
				})
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, f.opens)
		assert.Equal(t, 1, f.begins)
		assert.Equal(t, 1, f.commits)
		assert.Equal(t, 0, f.rollbacks)
		assert.Equal(t, 1, f.closes)
	})

	t.Run("InnerFailure", func(t *testing.T) {
		f := &fakeOpener{}
		err := Transact(ctx, f, nil, func(ctx context.Context) error {
			inner := Transact(ctx, nil, nil, func(context.Context) error { return assert.AnError })
			require.ErrorIs(t, inner, assert.AnError)
			return nil
		})
		require.Error(t, err)
		assert.True(t, sqlrecord.IsTransactionStateError(err), "outer completion fails after the inner rollback")
		assert.Equal(t, 0, f.commits)
		assert.Equal(t, 1, f.rollbacks)
		assert.Equal(t, 1, f.closes)
	})
}

func TestScopeOverStatsDriver(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	stats := sql.NewStatsDriver(sql.OpenDB(dialect.NewSQLite(), db))

	mock.ExpectBegin()
	mock.ExpectExec("update t").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := New(stats)
	var handles []*ConnectionHandle
	for i := 0; i < 5; i++ {
		h, err := s.Open(ctx)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	var ths []*TransactionHandle
	for i := 0; i < 3; i++ {
		th, err := s.Begin(ctx, nil)
		require.NoError(t, err)
		ths = append(ths, th)
	}
	ex, err := s.ExecQuerier()
	require.NoError(t, err)
	_, err = ex.ExecContext(ctx, "update t")
	require.NoError(t, err)
	for i := len(ths) - 1; i >= 0; i-- {
		require.NoError(t, ths[i].Complete())
	}
	for i := len(handles) - 1; i >= 0; i-- {
		require.NoError(t, handles[i].Close())
	}
	require.NoError(t, mock.ExpectationsWereMet())

	snap := stats.QueryStats().Stats()
	assert.Equal(t, int64(1), snap.Opens)
	assert.Equal(t, int64(1), snap.Closes)
	assert.Equal(t, int64(1), snap.Begins)
	assert.Equal(t, int64(1), snap.Commits)
	assert.Equal(t, int64(0), snap.Rollbacks)
}
