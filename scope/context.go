package scope

import (
	"context"
	"errors"

	"github.com/syssam/sqlrecord/dialect/sql"
)

// ctxKey is the key used for attaching and reading the ambient scope.
type ctxKey struct{}

// NewContext returns a new context carrying s as the ambient scope.
func NewContext(ctx context.Context, s *ConnectionScope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the ambient scope stored in ctx, if any.
func FromContext(ctx context.Context) (*ConnectionScope, bool) {
	s, ok := ctx.Value(ctxKey{}).(*ConnectionScope)
	return s, ok && s != nil
}

// ambient returns the scope of ctx, or a new scope over o attached to the
// returned context.
func ambient(ctx context.Context, o sql.Opener) (context.Context, *ConnectionScope, error) {
	if s, ok := FromContext(ctx); ok {
		return ctx, s, nil
	}
	if o == nil {
		return ctx, nil, errors.New("scope: no ambient scope and no opener")
	}
	s := New(o)
	return NewContext(ctx, s), s, nil
}

// Do runs fn on the ambient scope of ctx, or on a temporary scope over o when
// ctx carries none. fn receives the active transaction if one is open, the
// connection otherwise. A connection opened for fn is closed before Do
// returns; one that was already open stays open.
func Do(ctx context.Context, o sql.Opener, fn func(context.Context, sql.ExecQuerier) error) (err error) {
	ctx, s, err := ambient(ctx, o)
	if err != nil {
		return err
	}
	h, err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, h.Close()) }()
	ex, err := s.ExecQuerier()
	if err != nil {
		return err
	}
	return fn(ctx, ex)
}

// Transact runs fn inside a transaction of the ambient scope (or a temporary
// one) and completes it when fn succeeds. An error from fn, or a panic, rolls
// the whole transaction back.
func Transact(ctx context.Context, o sql.Opener, opts *sql.TxOptions, fn func(context.Context) error) (err error) {
	ctx, s, err := ambient(ctx, o)
	if err != nil {
		return err
	}
	ch, err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ch.Close()) }()
	th, err := s.Begin(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, th.Close()) }()
	if err := fn(ctx); err != nil {
		return err
	}
	return th.Complete()
}
