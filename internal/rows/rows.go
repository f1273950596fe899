// Package rows maps Source Records to Display Rows.
//
// Mapping never fails: missing or malformed fields degrade to defaults, and
// anything noteworthy is reported as a Warning next to the rows instead.
package rows

import (
	"fmt"
	"log/slog"

	"github.com/salmonumbrella/utilisation-cli/internal/numfmt"
	"github.com/salmonumbrella/utilisation-cli/internal/source"
)

// Currency is appended to net earnings cells.
const Currency = "EUR"

// PersonSuffix is appended to every person label.
const PersonSuffix = " - ..."

// Row is one formatted table row. Field order matches the default columns.
type Row struct {
	Person               string `json:"person" yaml:"person"`
	Past12Months         string `json:"past12Months" yaml:"past12Months"`
	Y2D                  string `json:"y2d" yaml:"y2d"`
	June                 string `json:"june" yaml:"june"`
	July                 string `json:"july" yaml:"july"`
	August               string `json:"august" yaml:"august"`
	NetEarningsPrevMonth string `json:"netEarningsPrevMonth" yaml:"netEarningsPrevMonth"`
}

// Warning describes a field that was degraded to a default.
type Warning struct {
	Row     int    `json:"row" yaml:"row"`
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d: %s: %s", w.Row, w.Field, w.Message)
}

// Map converts a single record.
func Map(rec source.Record) Row {
	row, _ := mapRecord(0, rec)
	return row
}

// MapAll converts records in order. len(result) == len(records).
func MapAll(records []source.Record) []Row {
	out, _ := MapAllWithWarnings(records)
	return out
}

// MapAllWithWarnings converts records in order and collects warnings.
func MapAllWithWarnings(records []source.Record) ([]Row, []Warning) {
	out := make([]Row, len(records))
	var warnings []Warning
	for i, rec := range records {
		row, ws := mapRecord(i, rec)
		out[i] = row
		warnings = append(warnings, ws...)
	}
	slog.Debug("mapped rows", "rows", len(out), "warnings", len(warnings))
	return out, warnings
}

type mapper struct {
	row      int
	warnings []Warning
}

func (m *mapper) warn(field, format string, args ...any) {
	m.warnings = append(m.warnings, Warning{Row: m.row, Field: field, Message: fmt.Sprintf(format, args...)})
}

func mapRecord(index int, rec source.Record) (Row, []Warning) {
	m := &mapper{row: index}
	if rec.Err != nil {
		m.warn("record", "could not decode: %v", rec.Err)
	}

	emp := m.alternative("employees", rec.Employees)
	ext := m.alternative("externals", rec.Externals)
	if emp != nil && ext != nil {
		m.warn("record", "both employees and externals are set; employees take precedence")
	}

	m.checkInvalid("person", firstname(emp), firstname(ext))
	name := ResolveText(firstname(emp), firstname(ext))

	row := Row{
		Person:       name.String() + PersonSuffix,
		Past12Months: FormatPast12Months(m.rate("past12Months", emp, ext, lastTwelveMonths)),
		Y2D:          FormatY2D(m.rate("y2d", emp, ext, yearToDate)),
		// The month sequence is latest-first: August is index 0.
		June:   FormatMonth(m.rate("june", emp, ext, monthAt(2))),
		July:   FormatMonth(m.rate("july", emp, ext, monthAt(1))),
		August: FormatMonth(m.rate("august", emp, ext, monthAt(0))),
	}

	m.checkInvalid("netEarningsPrevMonth", costDifference(emp), costDifference(ext))
	net := ResolveAmount(costDifference(emp), costDifference(ext))
	row.NetEarningsPrevMonth = FormatCurrency(net)

	return row, m.warnings
}

// rate resolves a rate field with falsy fallback, substitutes "0" for an
// empty result and parses it.
func (m *mapper) rate(field string, emp, ext *source.Worker, get func(*source.Utilisation) source.Scalar) float64 {
	primary, fallback := utilisationField(emp, get), utilisationField(ext, get)
	m.checkInvalid(field, primary, fallback)
	v := ResolveText(primary, fallback)

	text := "0"
	if v.Truthy() {
		text = v.Text
	}
	rate, ok := ParsePercentRate(text)
	if !ok {
		m.warn(field, "no numeric value in %q, using 0", text)
	}
	return rate
}

// alternative returns w with invalid parts dropped. A non-object worker
// counts as missing; a non-object workforceUtilisation leaves the name usable.
func (m *mapper) alternative(field string, w *source.Worker) *source.Worker {
	if w == nil {
		return nil
	}
	if w.Invalid {
		m.warn(field, "expected an object, ignoring it")
		return nil
	}
	if w.WorkforceUtilisation != nil && w.WorkforceUtilisation.Invalid {
		m.warn(field+".workforceUtilisation", "expected an object, ignoring it")
		c := *w
		c.WorkforceUtilisation = nil
		return &c
	}
	return w
}

func (m *mapper) checkInvalid(field string, values ...source.Scalar) {
	for _, v := range values {
		if v.Invalid {
			m.warn(field, "expected a scalar value, got an object or array")
			return
		}
	}
}

func firstname(w *source.Worker) source.Scalar {
	if w == nil {
		return source.Scalar{}
	}
	return w.Firstname
}

func costDifference(w *source.Worker) source.Scalar {
	return utilisationField(w, func(u *source.Utilisation) source.Scalar { return u.MonthlyCostDifference })
}

func utilisationField(w *source.Worker, get func(*source.Utilisation) source.Scalar) source.Scalar {
	if w == nil || w.WorkforceUtilisation == nil {
		return source.Scalar{}
	}
	return get(w.WorkforceUtilisation)
}

func lastTwelveMonths(u *source.Utilisation) source.Scalar {
	return u.UtilisationRateLastTwelveMonths
}

func yearToDate(u *source.Utilisation) source.Scalar {
	return u.UtilisationRateYearToDate
}

func monthAt(i int) func(*source.Utilisation) source.Scalar {
	return func(u *source.Utilisation) source.Scalar {
		if e := u.LastThreeMonthsIndividually.At(i); e != nil {
			return e.UtilisationRate
		}
		return source.Scalar{}
	}
}

// ResolveText picks primary when it is truthy and otherwise returns fallback
// unchanged, even when fallback is empty, null or absent.
func ResolveText(primary, fallback source.Scalar) source.Scalar {
	if primary.Truthy() {
		return primary
	}
	return fallback
}

// ResolveAmount picks primary unless it is null or absent. A zero primary
// does not fall back.
func ResolveAmount(primary, fallback source.Scalar) source.Scalar {
	if !primary.Nullish() {
		return primary
	}
	return fallback
}

// ParsePercentRate parses a utilisation ratio. Empty text is treated as "0"
// before parsing. Text without a numeric prefix yields 0 and ok=false;
// trailing garbage after a number is ignored.
func ParsePercentRate(text string) (rate float64, ok bool) {
	if text == "" {
		text = "0"
	}
	return numfmt.ParsePrefix(text)
}

// FormatPast12Months renders the past-twelve-months cell, e.g. "50 % ".
func FormatPast12Months(rate float64) string {
	return percent(rate) + " % "
}

// FormatY2D renders the year-to-date cell, e.g. " 25  % ".
func FormatY2D(rate float64) string {
	return " " + percent(rate) + "  % "
}

// FormatMonth renders a single month cell, e.g. " 90 %".
func FormatMonth(rate float64) string {
	return " " + percent(rate) + " %"
}

// FormatCurrency renders the net earnings cell, e.g. " 1200.5 EUR ".
func FormatCurrency(v source.Scalar) string {
	return " " + v.String() + " " + Currency + " "
}

func percent(rate float64) string {
	return numfmt.Format(rate * 100)
}
