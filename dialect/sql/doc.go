// Package sql provides the physical connection contract used by scopes and
// records, implemented over database/sql.
//
// # Contracts
//
//   - Opener: opens one physical connection per call
//   - Conn: a pinned connection that executes statements and begins transactions
//   - Tx: a physical transaction
//
// Driver implements Opener over a *sql.DB and the dialect.Dialect it speaks:
//
//	d, _ := dialect.Resolve("postgres", dsn)
//	drv, err := sql.Open(d, dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Instrumentation
//
// StatsDriver and DebugDriver wrap any Opener. StatsDriver counts physical
// opens, closes, begins, commits and rollbacks along with statement
// timings, and reports slow statements through a hook or a *slog.Logger.
// DebugDriver logs every statement and transaction boundary at debug level.
//
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(logger))
//	debug := sql.NewDebugDriver(stats, sql.DebugWithLogger(logger))
//
// # Constraint Errors
//
// IsUniqueConstraintError, IsForeignKeyConstraintError and
// IsCheckConstraintError classify engine errors from lib/pq, pgx,
// go-sql-driver/mysql, go-mssqldb and modernc.org/sqlite. Errors are never
// rewritten; the helpers only inspect them.
package sql
