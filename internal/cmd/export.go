package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
	"github.com/salmonumbrella/utilisation-cli/internal/table"
	"github.com/salmonumbrella/utilisation-cli/internal/ui"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		opts  rowOptions
		sheet string
	)

	cmd := &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the utilisation table to a spreadsheet",
		Long: `Write the same rows 'utl table' prints to an Excel workbook.

Cells are stored as text so the formatted values keep their exact spacing.
Global --sort-by, --desc and --limit apply.`,
		Example: `  utl export utilisation.xlsx
  utl export out/q3.xlsx --sheet Q3 --columns person,past12Months,y2d`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := strings.TrimSpace(args[0])
			if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
				return clierrors.NewUserError(
					fmt.Sprintf("export path %q must end in .xlsx", path),
					"Example: utl export utilisation.xlsx",
				)
			}

			cols, data, err := loadRows(ctx, app.Stdin, opts)
			if err != nil {
				return err
			}

			if sheet == "" {
				sheet = ConfigFromContext(ctx).Sheet
			}
			if err := table.WriteXLSX(path, sheet, table.Build(cols, data)); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			ui.FromContext(ctx).Success("Exported %d rows to %s", len(data), path)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name (default config sheet or \""+table.DefaultSheet+"\")")
	return cmd
}
