package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/syssam/sqlrecord/dialect"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Show the dialect resolved for the configured provider",
		Long: `Resolve the configured provider to a dialect and print how it quotes,
names parameters, pages and retrieves identities. An empty or engine-neutral
provider (odbc, oledb) is resolved from the connection string.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd.Context())
			d, err := cfg.Dialect()
			if err != nil {
				return err
			}
			return renderDialect(cmd.OutOrStdout(), d)
		},
	}
}

func renderDialect(w io.Writer, d dialect.Dialect) error {
	quoted, err := d.QuoteIdentifier("Table")
	if err != nil {
		return err
	}
	param, err := d.ParameterName("Name")
	if err != nil {
		return err
	}
	placeholder, err := d.ParameterPlaceholder("Name", 1)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Property", "Value"})
	t.AppendRow(table.Row{"Dialect", d.Name()})
	t.AppendRow(table.Row{"Driver", d.DriverName()})
	t.AppendRow(table.Row{"Quoted identifier", quoted})
	t.AppendRow(table.Row{"Parameter", fmt.Sprintf("%s -> %s", param, placeholder)})
	t.AppendRow(table.Row{"Identity retrieval", d.SupportsSynchronousIdentityRetrieval()})
	t.AppendRow(table.Row{"int32", d.MapType(dialect.TypeInt32)})
	t.AppendRow(table.Row{"string", d.MapType(dialect.TypeString)})
	t.AppendRow(table.Row{"guid", d.MapType(dialect.TypeGUID)})
	t.Render()
	return nil
}
