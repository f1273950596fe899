package cmd

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/utilisation-cli/internal/config"
	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
	"github.com/salmonumbrella/utilisation-cli/internal/logging"
	"github.com/salmonumbrella/utilisation-cli/internal/output"
	"github.com/salmonumbrella/utilisation-cli/internal/ui"
)

//go:embed help.txt
var rootHelpText string

func newRootCmd(app *App) *cobra.Command {
	var (
		debugMode     bool
		logFormat     string
		queryFlag     string
		jqFlag        string
		fieldsFlag    string
		jsonPathFlag  string
		errorFormat   string
		colorFlag     string
		quietFlag     bool
		failEmptyFlag bool
		compactJSON   bool
		limitFlag     int
		sortBy        string
		descFlag      bool
	)

	rootCmd := &cobra.Command{
		Use:   "utl",
		Short: "Workforce utilisation table",
		Long:  `Turn a workforce-utilisation JSON export into a flat table of percentages and earnings.`,
		// Error output is handled centrally in App.Execute.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			jsonLogs, ok := logging.ParseHandler(logFormat)
			if !ok {
				return clierrors.NewUserError(
					fmt.Sprintf("invalid --log-format %q", logFormat),
					"Use one of: text, json",
				)
			}
			logging.Setup(logging.Options{Debug: debugMode, JSON: jsonLogs, Writer: app.Stderr})

			if err := config.LoadDotEnv(""); err != nil {
				slog.Debug("skipping .env", "error", err)
			}

			// A broken config file must not block 'utl config' from repairing it.
			cfg := &config.Config{}
			if !isConfigCommand(cmd) {
				loaded, err := config.Load()
				if err != nil {
					return clierrors.WrapUserError(err, "failed to load config", "Run 'utl config path' and fix or remove the file")
				}
				cfg = loaded
			}

			opts, err := parseGlobalOptions(cmd, cfg, app.Stdout, globalFlagInput{
				queryFlag:     queryFlag,
				jqFlag:        jqFlag,
				fieldsFlag:    fieldsFlag,
				jsonPathFlag:  jsonPathFlag,
				colorFlag:     colorFlag,
				quietFlag:     quietFlag,
				failEmptyFlag: failEmptyFlag,
				compactJSON:   compactJSON,
				limitFlag:     limitFlag,
				sortBy:        sortBy,
				descFlag:      descFlag,
				errorFormat:   errorFormat,
			})
			if err != nil {
				return err
			}

			// Record the error format before validating so a bad flag is still
			// reported in the requested shape.
			cmd.SetContext(output.WithFormat(WithErrorFormat(cmd.Context(), opts.errorFormat), opts.format))
			if err := validateGlobalOptions(&opts); err != nil {
				return err
			}

			cmd.SetContext(buildRootContext(cmd.Context(), app, cfg, opts))
			return nil
		},
	}

	rootCmd.Version = app.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("utl %s (commit: %s, built: %s)\n", app.Version, app.Commit, app.BuildTime))

	pf := rootCmd.PersistentFlags()
	pf.StringP("output", "o", "text", "Output format: text|table|grid|json|ndjson|jsonl|yaml")
	pf.String("format", "text", "Alias for --output")
	_ = pf.MarkHidden("format")
	pf.BoolP("json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&queryFlag, "query", "q", "", "JQ expression to filter output")
	pf.StringVar(&jqFlag, "jq", "", "Alias for --query")
	_ = pf.MarkHidden("jq")
	pf.StringVar(&fieldsFlag, "fields", "", "Keep only these record keys (comma-separated, use name=key to rename)")
	pf.StringVar(&jsonPathFlag, "jsonpath", "", "Extract a value using JSONPath (e.g. $[0].person)")
	pf.IntVar(&limitFlag, "limit", 0, "Limit number of rows (0 = no limit)")
	pf.StringVar(&sortBy, "sort-by", "", "Sort rows by column key")
	pf.BoolVar(&descFlag, "desc", false, "Sort in descending order")
	pf.BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")
	pf.BoolVar(&failEmptyFlag, "fail-empty", false, "Exit with error when there are no rows")
	pf.BoolVar(&compactJSON, "compact-json", false, "Output compact JSON (single-line) instead of pretty JSON")
	pf.StringVar(&errorFormat, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	pf.StringVar(&colorFlag, "color", "", "Color mode for status messages (auto|always|never)")
	pf.BoolVar(&debugMode, "debug", false, "Enable debug logging on stderr")
	pf.StringVar(&logFormat, "log-format", "text", "Log format on stderr (text|json)")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "query", "qr")
	flagAlias(pf, "fields", "fds")
	flagAlias(pf, "fail-empty", "fe")
	flagAlias(pf, "sort-by", "sb")
	flagAlias(pf, "compact-json", "cj")

	rootCmd.AddCommand(newTableCmd(app))
	rootCmd.AddCommand(newColumnsCmd())
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())

	installRootHelp(rootCmd)
	return rootCmd
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func parseColorMode(value string) (ui.ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ui.ColorAuto, nil
	case "always":
		return ui.ColorAlways, nil
	case "never":
		return ui.ColorNever, nil
	default:
		return ui.ColorAuto, clierrors.NewUserError(
			fmt.Sprintf("invalid color mode %q", value),
			"Use one of: auto, always, never",
		)
	}
}

func installRootHelp(root *cobra.Command) {
	defaultHelp := root.HelpFunc()

	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), rootHelpText)
	})
}
