// Package source models the workforce utilisation export and loads it.
//
// The export is a JSON array. Each entry carries either an "employees" or an
// "externals" object; leaf values are decoded leniently so one malformed field
// never drops a record.
package source

import (
	"bytes"
	"errors"
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/salmonumbrella/utilisation-cli/internal/numfmt"
)

// Record is one raw input entry. Exactly one of Employees and Externals is
// expected to be set.
type Record struct {
	Employees *Worker `json:"employees,omitempty"`
	Externals *Worker `json:"externals,omitempty"`

	// Err is set by the loader when the entry could not be decoded. The
	// record is then empty but still occupies its position.
	Err error `json:"-"`
}

// Worker is the per-person payload shared by both record alternatives.
type Worker struct {
	Firstname            Scalar       `json:"firstname"`
	WorkforceUtilisation *Utilisation `json:"workforceUtilisation,omitempty"`

	// Invalid marks a non-object value. The worker then has no fields.
	Invalid bool `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler. A non-object value decodes as
// an empty, invalid Worker instead of failing the record.
func (w *Worker) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*w = Worker{}
	if len(data) == 0 || data[0] == 'n' {
		return nil
	}
	if data[0] != '{' {
		w.Invalid = true
		return nil
	}
	type plain Worker
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*w = Worker(p)
	return nil
}

// Utilisation holds the rates and cost figures of a worker.
type Utilisation struct {
	UtilisationRateLastTwelveMonths Scalar `json:"utilisationRateLastTwelveMonths"`
	UtilisationRateYearToDate       Scalar `json:"utilisationRateYearToDate"`
	LastThreeMonthsIndividually     Months `json:"lastThreeMonthsIndividually"`
	MonthlyCostDifference           Scalar `json:"monthlyCostDifference"`

	// Invalid marks a non-object value. Every field is then absent.
	Invalid bool `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler. A non-object value decodes as
// an empty, invalid Utilisation.
func (u *Utilisation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*u = Utilisation{}
	if len(data) == 0 || data[0] == 'n' {
		return nil
	}
	if data[0] != '{' {
		u.Invalid = true
		return nil
	}
	type plain Utilisation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = Utilisation(p)
	return nil
}

// MonthlyRate is one entry of the last-three-months sequence.
type MonthlyRate struct {
	UtilisationRate Scalar `json:"utilisationRate"`
}

// Kind is the JSON type a Scalar was decoded from.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
)

// Scalar is a leniently decoded JSON leaf. It remembers whether the key was
// missing, explicitly null, or held a string, number or bool, so callers can
// tell falsy values apart from nullish ones.
type Scalar struct {
	Kind Kind
	// Text is the value as the source would interpolate it into a string.
	Text string
	// Num is set for KindNumber.
	Num float64
	// Invalid marks an object or array where a scalar was expected. The
	// value is then treated as absent.
	Invalid bool
}

// String returns s as text. Absent and invalid values render as "undefined",
// null as "null".
func (s Scalar) String() string {
	switch s.Kind {
	case KindAbsent:
		return "undefined"
	case KindNull:
		return "null"
	default:
		return s.Text
	}
}

// Truthy reports whether s counts as true in a boolean context: a non-empty
// string, a non-zero number, or true.
func (s Scalar) Truthy() bool {
	switch s.Kind {
	case KindString:
		return s.Text != ""
	case KindNumber:
		return s.Num != 0 && !math.IsNaN(s.Num)
	case KindBool:
		return s.Text == "true"
	default:
		return false
	}
}

// Nullish reports whether s is absent or null.
func (s Scalar) Nullish() bool {
	return s.Kind == KindAbsent || s.Kind == KindNull
}

// String builds a string Scalar.
func String(v string) Scalar {
	return Scalar{Kind: KindString, Text: v}
}

// Number builds a number Scalar.
func Number(v float64) Scalar {
	return Scalar{Kind: KindNumber, Text: numfmt.Format(v), Num: v}
}

// Null builds an explicit null Scalar.
func Null() Scalar {
	return Scalar{Kind: KindNull}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = Scalar{}
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case 'n':
		s.Kind = KindNull
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = String(v)
	case 't', 'f':
		s.Kind = KindBool
		s.Text = string(data)
	case '{', '[':
		s.Invalid = true
	default:
		// Out-of-range literals become ±Inf (or 0 on underflow).
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return err
		}
		*s = Number(v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values marshal as null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindString:
		return json.Marshal(s.Text)
	case KindNumber:
		return json.Marshal(s.Num)
	case KindBool:
		return []byte(s.Text), nil
	default:
		return []byte("null"), nil
	}
}

// Months is the last-three-months sequence, latest month first.
type Months struct {
	Entries []*MonthlyRate
	// Invalid marks a non-array value. Entries is then empty.
	Invalid bool
}

// At returns the entry at index i, or nil when it is missing, null, or not
// an object.
func (m Months) At(i int) *MonthlyRate {
	if i < 0 || i >= len(m.Entries) {
		return nil
	}
	return m.Entries[i]
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Months) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*m = Months{}
	if len(data) == 0 || data[0] == 'n' {
		return nil
	}
	if data[0] != '[' {
		m.Invalid = true
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Entries = make([]*MonthlyRate, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var rate MonthlyRate
		if err := json.Unmarshal(item, &rate); err != nil {
			continue
		}
		m.Entries[i] = &rate
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m Months) MarshalJSON() ([]byte, error) {
	if m.Entries == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m.Entries)
}
