// Package output renders command results for utl.
//
// It supports output formats:
//   - text: aligned table for lists, key-value pairs for single objects (default)
//   - table: aligned table; requires a Table or a slice of structs/maps
//   - grid: bordered table for terminals
//   - json: pretty-printed JSON
//   - ndjson: newline-delimited JSON, one list item per line
//   - yaml: YAML
//
// # Options
//
// The format and the filters are parsed once in the root command's
// PersistentPreRunE and carried on the context:
//
//	cmd.SetContext(output.WithOptions(cmd.Context(), output.Options{
//		Format: format,
//		Query:  query,
//	}))
//
// Commands then print without threading options through every call:
//
//	printer := output.NewPrinter(os.Stdout, output.FormatFromContext(ctx))
//	return printer.Print(ctx, data)
//
// # Tables
//
// A Table carries its own header labels and pre-formatted cells and is the
// preferred input for text, table and grid output. Slices of structs fall back
// to upper-cased json tag names as headers.
package output
