package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/utilisation-cli/internal/config"
	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
	"github.com/salmonumbrella/utilisation-cli/internal/output"
	"github.com/salmonumbrella/utilisation-cli/internal/table"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
		Long:    `Manage the utl configuration file at ~/.config/utilisation-cli/config.yaml ($UTL_CONFIG overrides the location).`,
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := stdoutFromContext(ctx)
			cfg, err := config.Load()
			if err != nil {
				return clierrors.WrapUserError(err, "failed to load config", "Run 'utl config path' and fix or remove the file")
			}

			if output.FormatFromContext(ctx).IsStructured() {
				return printerForContext(ctx).Print(ctx, cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to format config: %w", err)
			}
			if string(data) == "{}\n" {
				path, _ := config.DefaultConfigPath()
				_, _ = fmt.Fprintf(out, "No configuration set in %s\n", path)
				_, _ = fmt.Fprintln(out, "\nTo create a config file, use:")
				_, _ = fmt.Fprintln(out, "  utl config set source ./source-data.json")
				return nil
			}

			_, _ = fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value. An empty value ("") clears the key.

Supported keys:
  output   - Default output format (text, table, grid, json, ndjson, yaml)
  color    - Default color mode (auto, always, never)
  source   - Default source JSON file
  columns  - Default column keys, comma separated (see 'utl columns')
  sheet    - Default worksheet name for export`,
		Example: `  utl config set output grid
  utl config set source ~/exports/source-data.json
  utl config set columns person,past12Months,y2d`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			key := strings.ToLower(strings.TrimSpace(args[0]))
			value := strings.TrimSpace(args[1])

			value, err := normalizeConfigValue(key, value)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return clierrors.WrapUserError(err, "failed to load config", "Run 'utl config path' and fix or remove the file")
			}
			if err := cfg.Set(key, value); err != nil {
				return clierrors.WrapUserError(err, "invalid config key", "Supported keys: "+strings.Join(config.Keys(), ", "))
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			path, _ := config.DefaultConfigPath()
			_, _ = fmt.Fprintf(out, "Set %s = %s in %s\n", key, value, path)
			return nil
		},
	}
}

// normalizeConfigValue validates value for key and returns its canonical form.
func normalizeConfigValue(key, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	switch key {
	case "output":
		format, err := output.ParseFormat(value)
		if err != nil {
			return "", clierrors.NewUserError(
				fmt.Sprintf("invalid output format %q", value),
				"Use one of: text, table, grid, json, ndjson, yaml",
			)
		}
		return string(format), nil
	case "color":
		if _, err := parseColorMode(value); err != nil {
			return "", err
		}
		return strings.ToLower(value), nil
	case "columns":
		cols, err := table.ParseColumns(value)
		if err != nil {
			return "", err
		}
		return strings.Join(table.Keys(cols), ","), nil
	}
	return value, nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			path, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			_, _ = fmt.Fprintln(out, path)
			if _, err := os.Stat(path); err == nil {
				_, _ = fmt.Fprintln(out, "(file exists)")
			} else if errors.Is(err, fs.ErrNotExist) {
				_, _ = fmt.Fprintln(out, "(file does not exist)")
			}
			return nil
		},
	}
}
