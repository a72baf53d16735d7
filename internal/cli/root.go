// Package cli provides the sqlrecord command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlrecord/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type configKey struct{}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "sqlrecord",
		Short: "Inspect sqlrecord dialects, commands and connections",
		Long: `sqlrecord resolves database providers to SQL dialects, renders the
commands generated for described tables and checks connections through
nested connection and transaction scopes.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./sqlrecord.yaml)")
	flags.StringP("provider", "p", "", "database provider (sqlserver, mysql, postgres, pgx, sqlite, odbc, ...)")
	flags.StringP("connection-string", "c", "", "connection string")
	flags.String("tables", "", "YAML table descriptor file")
	flags.Duration("slow-threshold", config.DefaultSlowThreshold, "slow statement threshold")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		NewVersionCommand(Version),
		NewResolveCommand(),
		NewSQLCommand(),
		NewPingCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// configFrom returns the config loaded by the root command.
func configFrom(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		SlowThreshold: config.DefaultSlowThreshold,
		LogLevel:      config.DefaultLogLevel,
	}
}
