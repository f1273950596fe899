package output

import "context"

// Options are the presenter settings shared by every command. The root
// command builds them once from the global flags.
type Options struct {
	Format Format
	// Query is a jq expression run over the printed records.
	Query string
	// Fields keeps only the listed record keys; "name=key" renames.
	Fields string
	// JSONPath extracts one value from the printed records.
	JSONPath string

	SortBy string
	Desc   bool
	Limit  int

	Quiet       bool
	FailEmpty   bool
	CompactJSON bool
}

// Reshapes reports whether a filter replaces the printed value. Commands
// then hand over records instead of a rendered Table.
func (o Options) Reshapes() bool {
	return o.Query != "" || o.Fields != "" || o.JSONPath != ""
}

type optionsKey struct{}

// WithOptions attaches o to ctx. An empty format means text.
func WithOptions(ctx context.Context, o Options) context.Context {
	if o.Format == "" {
		o.Format = FormatText
	}
	return context.WithValue(ctx, optionsKey{}, o)
}

// OptionsFromContext returns the options on ctx, or text output with no
// filters.
func OptionsFromContext(ctx context.Context) Options {
	if o, ok := ctx.Value(optionsKey{}).(Options); ok {
		return o
	}
	return Options{Format: FormatText}
}

// WithFormat replaces only the format of the options on ctx.
func WithFormat(ctx context.Context, format Format) context.Context {
	o := OptionsFromContext(ctx)
	o.Format = format
	return WithOptions(ctx, o)
}

// FormatFromContext returns the output format on ctx, text by default.
func FormatFromContext(ctx context.Context) Format {
	return OptionsFromContext(ctx).Format
}
