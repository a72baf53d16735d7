// Package record tracks the change state of an entity and writes it through
// the commands its schema.Table generates.
//
//	r := record.New(people, personMapping, &Person{Name: "Ann"}, drv)
//	if _, err := r.Save(ctx); err != nil {
//	    return err
//	}
//	r.AcceptChanges()
//
// New records start Added and attached ones start Unchanged. Save inserts
// Added records, updates Modified ones and ignores the rest. Writes never
// change the state; call AcceptChanges once the surrounding unit of work
// has committed.
//
// Every write runs through scope.Do: inside an ambient scope it uses that
// scope's connection and transaction, otherwise it opens and closes a
// connection of its own.
package record
