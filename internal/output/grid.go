package output

import (
	"errors"

	"github.com/olekukonko/tablewriter"
)

// printGrid draws data as a bordered table. Cells are written verbatim so
// padded values keep their spacing.
func (p *Printer) printGrid(data any) error {
	t, ok, err := tableFromValue(data)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("grid format requires a slice of maps or structs")
	}
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return nil
	}

	tw := tablewriter.NewWriter(p.w)
	tw.SetHeader(t.Headers)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(t.Rows)
	tw.Render()
	return nil
}
