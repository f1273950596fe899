package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable output (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is tabular format for lists.
	FormatTable Format = "table"
	// FormatGrid is a bordered table.
	FormatGrid Format = "grid"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON, "jsonl":
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatGrid:
		return FormatGrid, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|ndjson|jsonl|table|grid|yaml)")
	}
}

// IsStructured reports whether f encodes data rather than drawing a table.
func (f Format) IsStructured() bool {
	switch f {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return true
	}
	return false
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// Print writes data in the printer's format, honouring the options on ctx.
// Table and grid output draw data as is; the other formats accept --fields,
// --jsonpath and --query.
func (p *Printer) Print(ctx context.Context, data any) error {
	if data == nil {
		return nil
	}
	o := OptionsFromContext(ctx)

	if o.Reshapes() && (p.format == FormatTable || p.format == FormatGrid) {
		return clierrors.NewUserError(
			fmt.Sprintf("--query, --fields and --jsonpath do not apply to %s output", p.format),
			"Use --columns to pick table columns, or --output text|json|ndjson|yaml",
		)
	}

	values, err := reshape(data, o)
	if err != nil {
		return err
	}
	if o.FailEmpty && (len(values) == 0 || (len(values) == 1 && isEmpty(values[0]))) {
		return clierrors.NewUserError("no results", "Remove --fail-empty to allow empty output")
	}

	switch p.format {
	case FormatJSON:
		return p.writeJSON(!o.CompactJSON, values...)
	case FormatNDJSON:
		if o.Query == "" {
			values = listItems(values[0])
		}
		return p.writeJSON(false, values...)
	case FormatYAML:
		return p.writeYAML(values...)
	case FormatTable:
		return p.printTable(values[0])
	case FormatGrid:
		return p.printGrid(values[0])
	case FormatText:
		switch len(values) {
		case 0:
			return nil
		case 1:
			return p.printText(values[0])
		}
		return p.printText(values)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// writeJSON encodes each value on its own line, indented when pretty.
func (p *Printer) writeJSON(pretty bool, values ...any) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// writeYAML encodes each value as its own YAML document.
func (p *Printer) writeYAML(values ...any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			_ = enc.Close()
			return err
		}
	}
	return enc.Close()
}

// listItems splits a slice into its elements. Any other value is returned
// as the only item; a nil pointer yields none.
func listItems(data any) []any {
	v := derefValue(reflect.ValueOf(data))
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	case reflect.Slice, reflect.Array:
		items := make([]any, v.Len())
		for i := range items {
			items[i] = v.Index(i).Interface()
		}
		return items
	}
	return []any{data}
}

// printText writes lists as an aligned table, single objects as key-value
// pairs and scalars as they are.
func (p *Printer) printText(data any) error {
	if t, ok, err := tableFromValue(data); ok {
		if err != nil {
			return err
		}
		return p.writeTabbed(t)
	}

	v := derefValue(reflect.ValueOf(data))
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return nil
	}

	switch v.Kind() {
	case reflect.Map:
		return p.printTextMap(v)
	case reflect.Struct:
		return p.printTextStruct(v)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if _, err := fmt.Fprintln(p.w, formatCell(v.Index(i))); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(p.w, "%v\n", v.Interface())
		return err
	}
}

// printTextMap outputs a map as key-value pairs sorted by key.
func (p *Printer) printTextMap(v reflect.Value) error {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprintf("%v", keys[i]) < fmt.Sprintf("%v", keys[j])
	})

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, key := range keys {
		_, _ = fmt.Fprintf(tw, "%v:\t%s\n", key, formatCell(v.MapIndex(key)))
	}
	return tw.Flush()
}

// printTextStruct outputs a struct as key-value pairs in field order.
func (p *Printer) printTextStruct(v reflect.Value) error {
	t := v.Type()
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := fieldJSONName(f)
		if !f.IsExported() || name == "-" {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", name, formatCell(v.Field(i)))
	}
	return tw.Flush()
}

// printTable outputs data in tabular format using text/tabwriter.
func (p *Printer) printTable(data any) error {
	t, ok, err := tableFromValue(data)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("table format requires a slice of maps or structs")
	}
	return p.writeTabbed(t)
}

func (p *Printer) writeTabbed(t Table) error {
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		_, _ = fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// tableFromValue converts data into a Table when it is a Table or a list of
// structs or maps. ok is false when data is not tabular.
func tableFromValue(data any) (t Table, ok bool, err error) {
	switch v := data.(type) {
	case Table:
		return v, true, nil
	case *Table:
		if v == nil {
			return Table{}, true, nil
		}
		return *v, true, nil
	}

	v := derefValue(reflect.ValueOf(data))
	if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return Table{}, false, nil
	}
	if v.Len() == 0 {
		return Table{}, true, nil
	}

	first := derefValue(v.Index(0))
	switch first.Kind() {
	case reflect.Struct:
		t, err := tableFromStructs(v, first.Type())
		return t, true, err
	case reflect.Map:
		return tableFromMaps(v), true, nil
	default:
		return Table{}, false, nil
	}
}

func tableFromStructs(v reflect.Value, typ reflect.Type) (Table, error) {
	var idx []int
	var t Table
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := fieldJSONName(f)
		if !f.IsExported() || name == "-" {
			continue
		}
		idx = append(idx, i)
		t.Headers = append(t.Headers, strings.ToUpper(name))
	}
	if len(idx) == 0 {
		return Table{}, errors.New("no exported fields in struct")
	}

	for i := 0; i < v.Len(); i++ {
		item := derefValue(v.Index(i))
		if item.Kind() != reflect.Struct || item.Type() != typ {
			continue
		}
		row := make([]string, len(idx))
		for j, fi := range idx {
			row[j] = formatCell(item.Field(fi))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// tableFromMaps renders a list of maps with columns sorted by key.
// Missing keys render as "-".
func tableFromMaps(v reflect.Value) Table {
	seen := make(map[string]bool)
	var keys []string
	for i := 0; i < v.Len(); i++ {
		m := derefValue(v.Index(i))
		if m.Kind() != reflect.Map {
			continue
		}
		iter := m.MapRange()
		for iter.Next() {
			k := fmt.Sprintf("%v", iter.Key())
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	t := Table{Headers: make([]string, len(keys))}
	for i, k := range keys {
		t.Headers[i] = strings.ToUpper(k)
	}
	for i := 0; i < v.Len(); i++ {
		m := derefValue(v.Index(i))
		if m.Kind() != reflect.Map {
			continue
		}
		cells := make(map[string]string, m.Len())
		iter := m.MapRange()
		for iter.Next() {
			cells[fmt.Sprintf("%v", iter.Key())] = formatCell(iter.Value())
		}
		row := make([]string, len(keys))
		for j, k := range keys {
			if c, ok := cells[k]; ok {
				row[j] = c
			} else {
				row[j] = "-"
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// derefValue dereferences pointers and interfaces to the underlying value.
func derefValue(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

// fieldJSONName returns the json tag name for a struct field, or the field name.
func fieldJSONName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag != "" {
			return tag
		}
	}
	return f.Name
}

// formatCell formats a value for a single table cell or key-value line.
func formatCell(v reflect.Value) string {
	if !v.IsValid() {
		return "<nil>"
	}
	v = derefValue(v)
	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return "<nil>"
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Len() == 0 {
			return "{}"
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprintf("%v", keys[i]) < fmt.Sprintf("%v", keys[j])
		})
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%v:%s", k, formatCell(v.MapIndex(k))))
		}
		return "map[" + strings.Join(parts, " ") + "]"
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts = append(parts, formatCell(v.Index(i)))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v.Interface())
	}
}
