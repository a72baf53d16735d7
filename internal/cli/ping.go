package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/syssam/sqlrecord/dialect/sql"
	"github.com/syssam/sqlrecord/internal/config"
	"github.com/syssam/sqlrecord/scope"
)

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check the configured connection",
		Long: `Open a connection scope, run "select 1" inside a transaction scope and
print the physical operations the scopes performed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd.Context())
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			snap, err := ping(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall timeout")
	return cmd
}

func ping(ctx context.Context, cfg *config.Config, logOut io.Writer) (sql.StatsSnapshot, error) {
	d, err := cfg.Dialect()
	if err != nil {
		return sql.StatsSnapshot{}, err
	}
	log := cfg.Logger(logOut)
	drv, stats, err := sql.OpenWithStats(d, cfg.ConnectionString,
		sql.WithSlowThreshold(cfg.SlowThreshold),
		sql.WithSlowQueryLog(log),
	)
	if err != nil {
		return sql.StatsSnapshot{}, err
	}
	defer drv.Close()

	s := scope.New(sql.NewDebugDriver(stats, sql.DebugWithLogger(log)))
	if err := pingScope(ctx, s); err != nil {
		return stats.QueryStats().Stats(), err
	}
	log.Info("ping ok", "dialect", d.Name())
	return stats.QueryStats().Stats(), nil
}

func pingScope(ctx context.Context, s *scope.ConnectionScope) (err error) {
	conn, err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, conn.Close()) }()

	tx, err := s.Begin(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, tx.Close()) }()

	ex, err := s.ExecQuerier()
	if err != nil {
		return err
	}
	var one int64
	if err := sql.QueryScalar(ctx, ex, "select 1", nil, &one); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if one != 1 {
		return fmt.Errorf("ping: unexpected result %d", one)
	}
	return tx.Complete()
}

func renderStats(w io.Writer, s sql.StatsSnapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Operation", "Count"})
	t.AppendRows([]table.Row{
		{"Opens", s.Opens},
		{"Closes", s.Closes},
		{"Begins", s.Begins},
		{"Commits", s.Commits},
		{"Rollbacks", s.Rollbacks},
		{"Queries", s.TotalQueries},
		{"Execs", s.TotalExecs},
		{"Slow", s.SlowQueries},
		{"Errors", s.Errors},
	})
	t.AppendFooter(table.Row{"Avg duration", s.AvgQueryDuration()})
	t.Render()
}
