package record

import (
	"context"
	"fmt"

	"github.com/syssam/sqlrecord/dialect"
	"github.com/syssam/sqlrecord/dialect/sql"
	"github.com/syssam/sqlrecord/schema"
	"github.com/syssam/sqlrecord/scope"
)

// State is the change state of a record.
type State uint8

// Record states.
const (
	Added State = iota
	Modified
	Unchanged
	Deleted
	ToDelete
)

var stateNames = [...]string{
	Added:     "added",
	Modified:  "modified",
	Unchanged: "unchanged",
	Deleted:   "deleted",
	ToDelete:  "to-delete",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Record pairs an entity value with its change state and persists it through
// the table's generated commands.
type Record[T any] struct {
	value  *T
	entity schema.Entity
	table  *schema.Table
	opener sql.Opener
	state  State
}

// New returns a record in the Added state. o opens connections for writes
// made outside an ambient scope; it may be nil when every write runs inside
// one.
func New[T any](t *schema.Table, m *schema.Mapping[T], v *T, o sql.Opener) *Record[T] {
	return &Record[T]{
		value:  v,
		entity: m.Bind(v),
		table:  t,
		opener: o,
		state:  Added,
	}
}

// Attach returns a record for a value already stored, in the Unchanged
// state.
func Attach[T any](t *schema.Table, m *schema.Mapping[T], v *T, o sql.Opener) *Record[T] {
	r := New(t, m, v, o)
	r.state = Unchanged
	return r
}

// Value returns the entity value.
func (r *Record[T]) Value() *T { return r.value }

// Table returns the record's table.
func (r *Record[T]) Table() *schema.Table { return r.table }

// State returns the change state.
func (r *Record[T]) State() State { return r.state }

// AcceptChanges marks the record Unchanged. Writes never call it.
func (r *Record[T]) AcceptChanges() { r.state = Unchanged }

// MarkModified marks the record Modified.
func (r *Record[T]) MarkModified() { r.state = Modified }

// MarkForDelete marks the record ToDelete.
func (r *Record[T]) MarkForDelete() { r.state = ToDelete }

// MarkDeleted marks the record Deleted.
func (r *Record[T]) MarkDeleted() { r.state = Deleted }

// Save inserts an Added record and updates a Modified one. Other states
// write nothing and return 0.
func (r *Record[T]) Save(ctx context.Context) (int64, error) {
	switch r.state {
	case Added:
		return r.Insert(ctx)
	case Modified:
		return r.Update(ctx)
	default:
		return 0, nil
	}
}

// Insert writes the record. When the dialect returns identities in the same
// batch and the key is auto-increment, the new key is stored in the entity
// and Insert returns 1. Otherwise it returns the affected-row count.
//
// The identity insert and the key write-back share a transaction scope, so a
// key that cannot be stored in the entity leaves no row behind.
func (r *Record[T]) Insert(ctx context.Context) (int64, error) {
	cmd, err := r.table.BuildInsert(r.entity)
	if err != nil {
		return 0, err
	}
	pk, ok := r.table.PrimaryKey()
	if !ok || !pk.AutoIncrement() || !r.table.Dialect().SupportsSynchronousIdentityRetrieval() {
		return r.exec(ctx, cmd)
	}
	err = scope.Transact(ctx, r.opener, nil, func(ctx context.Context) error {
		return scope.Do(ctx, r.opener, func(ctx context.Context, ex sql.ExecQuerier) error {
			var id any
			if err := sql.QueryScalar(ctx, ex, cmd.Text, cmd.Args(), &id); err != nil {
				return fmt.Errorf("record: insert %s: %w", r.table.Name(), err)
			}
			if err := r.entity.Set(pk.Property, id); err != nil {
				return fmt.Errorf("record: insert %s: %w", r.table.Name(), err)
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// Update writes every non-key field and returns the affected-row count.
func (r *Record[T]) Update(ctx context.Context) (int64, error) {
	cmd, err := r.table.BuildUpdate(r.entity)
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, cmd)
}

// Delete removes the record and returns the affected-row count. The state is
// left unchanged.
func (r *Record[T]) Delete(ctx context.Context) (int64, error) {
	cmd, err := r.table.BuildDelete(r.entity)
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, cmd)
}

func (r *Record[T]) exec(ctx context.Context, cmd *dialect.Command) (n int64, err error) {
	err = scope.Do(ctx, r.opener, func(ctx context.Context, ex sql.ExecQuerier) error {
		res, err := ex.ExecContext(ctx, cmd.Text, cmd.Args()...)
		if err != nil {
			return fmt.Errorf("record: %s: %w", r.table.Name(), err)
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
