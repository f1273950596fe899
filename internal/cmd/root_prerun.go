package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/utilisation-cli/internal/config"
	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
	"github.com/salmonumbrella/utilisation-cli/internal/output"
	"github.com/salmonumbrella/utilisation-cli/internal/ui"
)

type globalFlagInput struct {
	queryFlag     string
	jqFlag        string
	fieldsFlag    string
	jsonPathFlag  string
	colorFlag     string
	quietFlag     bool
	failEmptyFlag bool
	compactJSON   bool
	limitFlag     int
	sortBy        string
	descFlag      bool
	errorFormat   string
}

type globalOptions struct {
	format      output.Format
	query       string
	fieldsRaw   string
	jsonPathRaw string
	color       ui.ColorMode
	quiet       bool
	failEmpty   bool
	compactJSON bool
	limit       int
	sortBy      string
	desc        bool
	errorFormat string

	queryFlagSet bool
	jqFlagSet    bool
}

func parseGlobalOptions(cmd *cobra.Command, cfg *config.Config, stdout io.Writer, flags globalFlagInput) (globalOptions, error) {
	opts := globalOptions{
		quiet:       flags.quietFlag,
		failEmpty:   flags.failEmptyFlag,
		compactJSON: flags.compactJSON,
		limit:       flags.limitFlag,
		sortBy:      strings.TrimSpace(flags.sortBy),
		desc:        flags.descFlag,
		errorFormat: flags.errorFormat,

		queryFlagSet: strings.TrimSpace(flags.queryFlag) != "",
		jqFlagSet:    strings.TrimSpace(flags.jqFlag) != "",
	}

	outputFlagSet := commandFlagChanged(cmd, "output") || commandFlagChanged(cmd, "out")
	formatFlagSet := commandFlagChanged(cmd, "format")

	formatStr, _ := cmd.Flags().GetString("output")
	jsonFlag, _ := cmd.Flags().GetBool("json")
	switch {
	case jsonFlag:
		formatStr = string(output.FormatJSON)
	case formatFlagSet:
		formatStr, _ = cmd.Flags().GetString("format")
	case outputFlagSet:
	case cfg.ResolveOutput() != "":
		formatStr = cfg.ResolveOutput()
	case !isTerminal(stdout):
		formatStr = string(output.FormatJSON)
	}

	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return globalOptions{}, clierrors.NewUserError(err.Error(), "Use one of: text, table, grid, json, ndjson, yaml")
	}
	opts.format = format

	if !cmd.Flags().Changed("quiet") && !isTerminal(stdout) && opts.format.IsStructured() {
		opts.quiet = true
	}

	colorStr := flags.colorFlag
	if !commandFlagChanged(cmd, "color") {
		colorStr = cfg.ResolveColor()
	}
	opts.color, err = parseColorMode(colorStr)
	if err != nil {
		return globalOptions{}, err
	}

	opts.query = strings.TrimSpace(flags.queryFlag)
	if opts.query == "" {
		opts.query = strings.TrimSpace(flags.jqFlag)
	}
	opts.fieldsRaw = strings.TrimSpace(flags.fieldsFlag)
	opts.jsonPathRaw = strings.TrimSpace(flags.jsonPathFlag)

	return opts, nil
}

func validateGlobalOptions(opts *globalOptions) error {
	if opts.jqFlagSet && opts.queryFlagSet {
		return errOnlyOne("--query", "--jq")
	}
	if opts.query != "" {
		if err := output.ValidateQuery(opts.query); err != nil {
			return clierrors.WrapUserError(err, "invalid --query", "Check the jq expression, e.g. --query '.[] | .person'")
		}
	}
	if opts.fieldsRaw != "" {
		if err := output.ValidateFields(opts.fieldsRaw); err != nil {
			return clierrors.WrapUserError(err, "invalid --fields value", "Example: --fields person,rate=past12Months")
		}
	}
	if opts.query != "" && (opts.fieldsRaw != "" || opts.jsonPathRaw != "") {
		return errOnlyOne("--query", "--fields or --jsonpath")
	}
	if opts.fieldsRaw != "" && opts.jsonPathRaw != "" {
		return errOnlyOne("--fields", "--jsonpath")
	}
	if opts.limit < 0 {
		return &clierrors.ValidationError{Field: "limit", Message: "must be >= 0"}
	}
	if opts.desc && opts.sortBy == "" {
		return clierrors.NewUserError("--desc requires --sort-by", "Example: --sort-by past12Months --desc")
	}
	return validateErrorFormat(opts.errorFormat)
}

func buildRootContext(ctx context.Context, app *App, cfg *config.Config, opts globalOptions) context.Context {
	ctx = withIO(ctx, app.Stdout, app.Stderr)
	ctx = WithConfig(ctx, cfg)
	ctx = WithErrorFormat(ctx, opts.errorFormat)

	ctx = output.WithOptions(ctx, output.Options{
		Format:      opts.format,
		Query:       opts.query,
		Fields:      opts.fieldsRaw,
		JSONPath:    opts.jsonPathRaw,
		SortBy:      opts.sortBy,
		Desc:        opts.desc,
		Limit:       opts.limit,
		Quiet:       opts.quiet,
		FailEmpty:   opts.failEmpty,
		CompactJSON: opts.compactJSON,
	})

	u := ui.New(app.Stderr, opts.color)
	u.SetQuiet(opts.quiet)
	return ui.WithUI(ctx, u)
}

func errOnlyOne(left, right string) error {
	return clierrors.NewUserError(fmt.Sprintf("use only one of %s or %s", left, right), "")
}

func commandFlagChanged(cmd *cobra.Command, name string) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if flag := current.Flags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
		if flag := current.PersistentFlags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
	}
	return false
}
