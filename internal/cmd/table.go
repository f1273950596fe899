package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
	"github.com/salmonumbrella/utilisation-cli/internal/output"
	"github.com/salmonumbrella/utilisation-cli/internal/rows"
	"github.com/salmonumbrella/utilisation-cli/internal/source"
	"github.com/salmonumbrella/utilisation-cli/internal/table"
	"github.com/salmonumbrella/utilisation-cli/internal/ui"
)

// rowOptions selects and shapes the rows shared by table and export.
type rowOptions struct {
	source   string
	columns  string
	warnings bool
	strict   bool
}

func (o *rowOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.source, "source", "s", "", "Source JSON file ('-' for stdin; default $UTL_SOURCE, config source, or ./source-data.json)")
	cmd.Flags().StringVar(&o.columns, "columns", "", "Comma-separated column keys to show (see 'utl columns')")
	cmd.Flags().BoolVar(&o.warnings, "warnings", false, "Print data-quality warnings to stderr")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Fail when the source has data-quality warnings")
	flagAlias(cmd.Flags(), "columns", "cols")
}

func newTableCmd(app *App) *cobra.Command {
	var opts rowOptions

	cmd := &cobra.Command{
		Use:     "table",
		Aliases: []string{"rows", "ls"},
		Short:   "Print the utilisation table",
		Long: `Load the source records, map each one to a display row and print the table.

Each row shows the person, utilisation over the past 12 months and year to date,
the individual rates for June, July and August, and the net earnings difference
of the previous month. Rates are taken from the employee record and fall back to
the external record when empty.`,
		Example: `  utl table
  utl table --source export.json -o grid
  utl table --columns person,y2d --sort-by y2d --desc --limit 5
  cat export.json | utl table -s - -o json --query '.[].person'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cols, data, err := loadRows(ctx, app.Stdin, opts)
			if err != nil {
				return err
			}
			return printRows(ctx, cols, data)
		},
	}
	opts.bind(cmd)
	return cmd
}

// loadRows resolves the source, maps every record and applies sorting and the
// row limit from the context. Warnings are reported through the UI.
func loadRows(ctx context.Context, stdin io.Reader, opts rowOptions) ([]table.Column, []rows.Row, error) {
	cfg := ConfigFromContext(ctx)

	columnsRaw := opts.columns
	if strings.TrimSpace(columnsRaw) == "" {
		columnsRaw = cfg.Columns
	}
	cols, err := table.ParseColumns(columnsRaw)
	if err != nil {
		return nil, nil, err
	}

	path := cfg.ResolveSource(opts.source, source.DefaultPath)
	loader := source.NewFileLoader(path)
	if stdin != nil {
		loader.Stdin = stdin
	}

	records, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	data, warnings := rows.MapAllWithWarnings(records)
	if err := reportWarnings(ctx, warnings, opts); err != nil {
		return nil, nil, err
	}

	o := output.OptionsFromContext(ctx)
	data, err = table.Sort(data, o.SortBy, o.Desc)
	if err != nil {
		return nil, nil, err
	}
	data = table.Limit(data, o.Limit)

	slog.Debug("table ready", "source", path, "rows", len(data), "columns", len(cols))
	return cols, data, nil
}

func reportWarnings(ctx context.Context, warnings []rows.Warning, opts rowOptions) error {
	if len(warnings) == 0 {
		return nil
	}
	if opts.warnings || opts.strict {
		u := ui.FromContext(ctx)
		for _, w := range warnings {
			u.Warning("%s", w)
		}
	}
	if opts.strict {
		first := warnings[0]
		return &clierrors.ValidationError{
			Field:   first.Field,
			Message: fmt.Sprintf("%d data-quality warning(s), first at %s", len(warnings), first),
		}
	}
	return nil
}

// printRows prints cols of data. Structured formats and output transforms
// see the rows keyed by column; text formats see the header labels.
func printRows(ctx context.Context, cols []table.Column, data []rows.Row) error {
	printer := printerForContext(ctx)
	if !wantsRecords(ctx) {
		return printer.Print(ctx, table.Build(cols, data))
	}
	if isDefaultColumns(cols) {
		if data == nil {
			data = []rows.Row{}
		}
		return printer.Print(ctx, data)
	}
	return printer.Print(ctx, table.Project(cols, data))
}

func wantsRecords(ctx context.Context) bool {
	o := output.OptionsFromContext(ctx)
	return o.Format.IsStructured() || o.Reshapes()
}

func isDefaultColumns(cols []table.Column) bool {
	def := table.DefaultColumns()
	if len(cols) != len(def) {
		return false
	}
	for i := range cols {
		if cols[i].Key != def[i].Key {
			return false
		}
	}
	return true
}
