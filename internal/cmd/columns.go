package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/utilisation-cli/internal/output"
	"github.com/salmonumbrella/utilisation-cli/internal/table"
)

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "columns",
		Aliases: []string{"cols"},
		Short:   "List the table columns",
		Long:    `List the column keys accepted by --columns and --sort-by, with their header labels, in display order.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cols := table.DefaultColumns()
			if wantsRecords(ctx) {
				return printerForContext(ctx).Print(ctx, cols)
			}

			t := output.Table{Headers: []string{"KEY", "HEADER"}}
			for _, c := range cols {
				t.Rows = append(t.Rows, []string{c.Key, c.Header})
			}
			return printerForContext(ctx).Print(ctx, t)
		},
	}
}
