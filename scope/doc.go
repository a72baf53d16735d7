// Package scope manages nested units of work over one physical connection
// and one physical transaction.
//
// A ConnectionScope counts its open handles: the first Open opens the
// physical connection and the last Close closes it. Begin works the same way
// for transactions, with one difference: rollback dominates. Once any handle
// rolls back, the physical transaction is gone and every later Complete on
// the same transaction fails with a *sqlrecord.TransactionStateError.
//
//	s := scope.New(drv)
//	ch, err := s.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	defer ch.Close()
//	th, err := s.Begin(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer th.Close() // rolls back unless completed
//	...
//	return th.Complete()
//
// Nested code finds the scope through the context:
//
//	ctx = scope.NewContext(ctx, s)
//	err = scope.Do(ctx, drv, func(ctx context.Context, ex sql.ExecQuerier) error {
//	    _, err := ex.ExecContext(ctx, cmd.Text, cmd.Args()...)
//	    return err
//	})
//
// Scopes are not safe for concurrent use.
package scope
