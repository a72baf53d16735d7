package sql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/sqlrecord/dialect"
)

// QueryStats holds physical operation counters and statement statistics.
type QueryStats struct {
	// Opens is the number of physical connections opened.
	Opens atomic.Int64
	// Closes is the number of physical connections closed.
	Closes atomic.Int64
	// Begins is the number of physical transactions started.
	Begins atomic.Int64
	// Commits is the number of physical commits.
	Commits atomic.Int64
	// Rollbacks is the number of physical rollbacks.
	Rollbacks atomic.Int64
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of exec statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of failed operations.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		Opens:         s.Opens.Load(),
		Closes:        s.Closes.Load(),
		Begins:        s.Begins.Load(),
		Commits:       s.Commits.Load(),
		Rollbacks:     s.Rollbacks.Load(),
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	for _, c := range []*atomic.Int64{
		&s.Opens, &s.Closes, &s.Begins, &s.Commits, &s.Rollbacks,
		&s.TotalQueries, &s.TotalExecs, &s.TotalDuration, &s.SlowQueries, &s.Errors,
	} {
		c.Store(0)
	}
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	Opens         int64
	Closes        int64
	Begins        int64
	Commits       int64
	Rollbacks     int64
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"opens=%d closes=%d begins=%d commits=%d rollbacks=%d queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.Opens, s.Closes, s.Begins, s.Commits, s.Rollbacks,
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is a function called when a slow statement is detected.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver wraps an Opener with statistics collection over every
// connection and transaction it hands out.
type StatsDriver struct {
	Opener
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow query detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to logger, or to the default logger
// when logger is nil.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		logger.WarnContext(ctx, "slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsDriver wraps an Opener with statistics collection.
//
// Example:
//
//	drv, _ := sql.Open(d, dsn)
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(logger),
//	)
//	s := scope.New(stats)
//
//	// Later, check statistics:
//	fmt.Println(stats.QueryStats().Stats())
func NewStatsDriver(o Opener, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Opener:        o,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow query threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow query threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Open opens a connection that records statistics.
func (d *StatsDriver) Open(ctx context.Context) (Conn, error) {
	c, err := d.Opener.Open(ctx)
	if err != nil {
		d.stats.Errors.Add(1)
		return nil, err
	}
	d.stats.Opens.Add(1)
	return &statsConn{Conn: c, driver: d}, nil
}

func (d *StatsDriver) record(ctx context.Context, query string, args []any, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		d.stats.TotalQueries.Add(1)
	} else {
		d.stats.TotalExecs.Add(1)
	}
	d.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, query, args, duration)
		}
	}
}

// count increments c on success and Errors on failure.
func (d *StatsDriver) count(c *atomic.Int64, err error) {
	if err != nil {
		d.stats.Errors.Add(1)
		return
	}
	c.Add(1)
}

// instrumented records statement statistics around an ExecQuerier.
type instrumented struct {
	ex     ExecQuerier
	driver *StatsDriver
}

func (i instrumented) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := i.ex.ExecContext(ctx, query, args...)
	i.driver.record(ctx, query, args, start, err, false)
	return res, err
}

func (i instrumented) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := i.ex.QueryContext(ctx, query, args...)
	i.driver.record(ctx, query, args, start, err, true)
	return rows, err
}

func (i instrumented) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := i.ex.QueryRowContext(ctx, query, args...)
	i.driver.record(ctx, query, args, start, row.Err(), true)
	return row
}

// statsConn wraps a connection with statistics collection.
type statsConn struct {
	Conn
	driver *StatsDriver
}

func (c *statsConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return instrumented{c.Conn, c.driver}.ExecContext(ctx, query, args...)
}

func (c *statsConn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return instrumented{c.Conn, c.driver}.QueryContext(ctx, query, args...)
}

func (c *statsConn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return instrumented{c.Conn, c.driver}.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction that also records statistics.
func (c *statsConn) BeginTx(ctx context.Context, opts *TxOptions) (Tx, error) {
	tx, err := c.Conn.BeginTx(ctx, opts)
	c.driver.count(&c.driver.stats.Begins, err)
	if err != nil {
		return nil, err
	}
	return &statsTx{Tx: tx, driver: c.driver}, nil
}

// Close closes the connection and records it.
func (c *statsConn) Close() error {
	err := c.Conn.Close()
	c.driver.count(&c.driver.stats.Closes, err)
	return err
}

// statsTx wraps a transaction with statistics collection.
type statsTx struct {
	Tx
	driver *StatsDriver
}

func (tx *statsTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return instrumented{tx.Tx, tx.driver}.ExecContext(ctx, query, args...)
}

func (tx *statsTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return instrumented{tx.Tx, tx.driver}.QueryContext(ctx, query, args...)
}

func (tx *statsTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return instrumented{tx.Tx, tx.driver}.QueryRowContext(ctx, query, args...)
}

// Commit commits the transaction and records it.
func (tx *statsTx) Commit() error {
	err := tx.Tx.Commit()
	tx.driver.count(&tx.driver.stats.Commits, err)
	return err
}

// Rollback rolls back the transaction and records it.
func (tx *statsTx) Rollback() error {
	err := tx.Tx.Rollback()
	tx.driver.count(&tx.driver.stats.Rollbacks, err)
	return err
}

// DebugDriver wraps an Opener with statement logging.
type DebugDriver struct {
	Opener
	logger *slog.Logger
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger statements are written to.
func DebugWithLogger(logger *slog.Logger) DebugOption {
	return func(d *DebugDriver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDebugDriver wraps an Opener with debug logging.
//
// Example:
//
//	drv, _ := sql.Open(d, dsn)
//	debug := sql.NewDebugDriver(drv, sql.DebugWithLogger(logger))
//	s := scope.New(debug)
func NewDebugDriver(o Opener, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Opener: o,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open opens a connection that logs its statements.
func (d *DebugDriver) Open(ctx context.Context) (Conn, error) {
	c, err := d.Opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	d.logger.DebugContext(ctx, "open connection")
	return &debugConn{Conn: c, logger: d.logger}, nil
}

type debugConn struct {
	Conn
	logger *slog.Logger
}

func (c *debugConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	c.logger.DebugContext(ctx, "exec", "query", query, "args", args)
	return c.Conn.ExecContext(ctx, query, args...)
}

func (c *debugConn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	c.logger.DebugContext(ctx, "query", "query", query, "args", args)
	return c.Conn.QueryContext(ctx, query, args...)
}

func (c *debugConn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	c.logger.DebugContext(ctx, "query", "query", query, "args", args)
	return c.Conn.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction with debug logging.
func (c *debugConn) BeginTx(ctx context.Context, opts *TxOptions) (Tx, error) {
	c.logger.DebugContext(ctx, "begin transaction")
	tx, err := c.Conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &debugTx{Tx: tx, logger: c.logger}, nil
}

// Close closes the connection and logs it.
func (c *debugConn) Close() error {
	c.logger.Debug("close connection")
	return c.Conn.Close()
}

type debugTx struct {
	Tx
	logger *slog.Logger
}

func (tx *debugTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx.logger.DebugContext(ctx, "tx exec", "query", query, "args", args)
	return tx.Tx.ExecContext(ctx, query, args...)
}

func (tx *debugTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	tx.logger.DebugContext(ctx, "tx query", "query", query, "args", args)
	return tx.Tx.QueryContext(ctx, query, args...)
}

func (tx *debugTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	tx.logger.DebugContext(ctx, "tx query", "query", query, "args", args)
	return tx.Tx.QueryRowContext(ctx, query, args...)
}

// Commit commits the transaction and logs it.
func (tx *debugTx) Commit() error {
	tx.logger.Debug("commit transaction")
	return tx.Tx.Commit()
}

// Rollback rolls back the transaction and logs it.
func (tx *debugTx) Rollback() error {
	tx.logger.Debug("rollback transaction")
	return tx.Tx.Rollback()
}

// Ensure interfaces are implemented.
var (
	_ Opener = (*StatsDriver)(nil)
	_ Conn   = (*statsConn)(nil)
	_ Tx     = (*statsTx)(nil)
	_ Opener = (*DebugDriver)(nil)
	_ Conn   = (*debugConn)(nil)
	_ Tx     = (*debugTx)(nil)
)

// OpenWithStats opens a database handle for d with statistics collection
// enabled.
//
// Example:
//
//	drv, stats, err := sql.OpenWithStats(dialect.NewPostgres(), dsn,
//	    sql.WithSlowThreshold(100*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
func OpenWithStats(d dialect.Dialect, source string, opts ...StatsOption) (*Driver, *StatsDriver, error) {
	drv, err := Open(d, source)
	if err != nil {
		return nil, nil, err
	}
	return drv, NewStatsDriver(drv, opts...), nil
}
