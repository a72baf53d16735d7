// Package sqlrecord is a multi-dialect record access layer over database/sql.
//
// The packages below it split the work:
//
//   - dialect: per-engine SQL differences (quoting, parameters, paging,
//     identity retrieval, type names) and dialect resolution
//   - dialect/sql: the physical connection contract, stats and debug
//     wrappers, and constraint error classification
//   - schema: table descriptions and the commands generated from them
//   - record: change-tracked entities saved through those commands
//   - scope: nested connection and transaction scopes sharing one physical
//     connection and one physical transaction
//
// This package holds the error types shared by all of them. Each type has a
// sentinel for errors.Is and an IsX helper:
//
//	if _, err := people.BuildUpdate(e); sqlrecord.IsConfigurationError(err) {
//	    // the table has no primary key
//	}
package sqlrecord
