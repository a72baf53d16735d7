package cli

import (
	"errors"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/syssam/sqlrecord/dialect"
	"github.com/syssam/sqlrecord/schema"
)

// NewSQLCommand creates the sql command.
func NewSQLCommand() *cobra.Command {
	var offset, limit int
	cmd := &cobra.Command{
		Use:   "sql [tables.yaml]",
		Short: "Render the commands generated for described tables",
		Long: `Render the select, paged select, insert, update and delete commands the
configured dialect generates for each table in a YAML descriptor file. The
file defaults to the "tables" config key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			path := cfg.Tables
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no table descriptor file: pass one or set tables")
			}
			d, err := cfg.Dialect()
			if err != nil {
				return err
			}
			tables, err := schema.LoadFile(path, d)
			if err != nil {
				return err
			}
			return renderCommands(cmd.OutOrStdout(), tables, offset, limit)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "paged select offset")
	cmd.Flags().IntVar(&limit, "limit", 10, "paged select limit")
	return cmd
}

// renderCommands prints one row per table and command kind. Commands that
// cannot be built for a table show the reason instead.
func renderCommands(w io.Writer, tables []*schema.Table, offset, limit int) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Command", "SQL"})
	for _, tbl := range tables {
		sample := schema.Values{}
		for _, f := range tbl.Fields() {
			sample[f.Property] = f.Property
		}
		builds := []struct {
			kind  string
			build func() (*dialect.Command, error)
		}{
			{"select", func() (*dialect.Command, error) { return tbl.BuildSelect() }},
			{"paged", func() (*dialect.Command, error) { return tbl.BuildPagedSelect(offset, limit, "") }},
			{"insert", func() (*dialect.Command, error) { return tbl.BuildInsert(sample) }},
			{"update", func() (*dialect.Command, error) { return tbl.BuildUpdate(sample) }},
			{"delete", func() (*dialect.Command, error) { return tbl.BuildDelete(sample) }},
		}
		for _, b := range builds {
			c, err := b.build()
			if err != nil {
				t.AppendRow(table.Row{tbl.Name(), b.kind, "unavailable: " + err.Error()})
				continue
			}
			t.AppendRow(table.Row{tbl.Name(), b.kind, c.Text})
		}
		t.AppendSeparator()
	}
	t.Render()
	return nil
}
