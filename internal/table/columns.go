// Package table holds the column descriptors for the utilisation table and
// turns Display Rows into renderable tables.
package table

import (
	"fmt"
	"strings"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
	"github.com/salmonumbrella/utilisation-cli/internal/output"
	"github.com/salmonumbrella/utilisation-cli/internal/rows"
)

// Column names the Row field a cell reads and the header shown above it.
type Column struct {
	Key    string `json:"key" yaml:"key"`
	Header string `json:"header" yaml:"header"`
}

var defaultColumns = []Column{
	{Key: "person", Header: "Person"},
	{Key: "past12Months", Header: "Past 12 Months"},
	{Key: "y2d", Header: "Y2D"},
	{Key: "june", Header: "June"},
	{Key: "july", Header: "July"},
	{Key: "august", Header: "August"},
	{Key: "netEarningsPrevMonth", Header: "Net Earnings Prev Month"},
}

// DefaultColumns returns the full column list in display order. The result
// is a copy and may be modified.
func DefaultColumns() []Column {
	out := make([]Column, len(defaultColumns))
	copy(out, defaultColumns)
	return out
}

// Keys returns the column keys in order.
func Keys(cols []Column) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

// Value returns the cell of row for a column key.
func Value(row rows.Row, key string) (string, bool) {
	switch key {
	case "person":
		return row.Person, true
	case "past12Months":
		return row.Past12Months, true
	case "y2d":
		return row.Y2D, true
	case "june":
		return row.June, true
	case "july":
		return row.July, true
	case "august":
		return row.August, true
	case "netEarningsPrevMonth":
		return row.NetEarningsPrevMonth, true
	default:
		return "", false
	}
}

// ParseColumns selects and orders columns from a comma-separated key list.
// Keys match case-insensitively. An empty list selects every column.
func ParseColumns(raw string) ([]Column, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultColumns(), nil
	}

	var cols []Column
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		key := strings.TrimSpace(part)
		if key == "" {
			continue
		}
		col, ok := lookup(key)
		if !ok {
			return nil, clierrors.NewUserError(
				fmt.Sprintf("unknown column %q", key),
				"Valid columns: "+strings.Join(Keys(defaultColumns), ", "),
			)
		}
		if seen[col.Key] {
			continue
		}
		seen[col.Key] = true
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return DefaultColumns(), nil
	}
	return cols, nil
}

func lookup(key string) (Column, bool) {
	for _, c := range defaultColumns {
		if strings.EqualFold(c.Key, key) {
			return c, true
		}
	}
	return Column{}, false
}

// Build renders rows into a table with one header per column.
func Build(cols []Column, data []rows.Row) output.Table {
	t := output.Table{
		Headers: make([]string, len(cols)),
		Rows:    make([][]string, 0, len(data)),
	}
	for i, c := range cols {
		t.Headers[i] = c.Header
	}
	for _, r := range data {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i], _ = Value(r, c.Key)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Project returns each row as a map restricted to cols, keyed by column key.
// Structured output formats use it so --columns applies to them as well.
func Project(cols []Column, data []rows.Row) []map[string]string {
	out := make([]map[string]string, len(data))
	for i, r := range data {
		m := make(map[string]string, len(cols))
		for _, c := range cols {
			m[c.Key], _ = Value(r, c.Key)
		}
		out[i] = m
	}
	return out
}
