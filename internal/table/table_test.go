package table

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
	"github.com/salmonumbrella/utilisation-cli/internal/rows"
)

func sampleRows() []rows.Row {
	return []rows.Row{
		{Person: "Cleo - ...", Past12Months: "50 % ", Y2D: " 25  % ", June: " 70 %", July: " 80 %", August: " 90 %", NetEarningsPrevMonth: " 1200.5 EUR "},
		{Person: "anna - ...", Past12Months: "9 % ", Y2D: " 0  % ", June: " 0 %", July: " 0 %", August: " 0 %", NetEarningsPrevMonth: " undefined EUR "},
		{Person: "Bob - ...", Past12Months: "100 % ", Y2D: " 5  % ", June: " 1 %", July: " 2 %", August: " 3 %", NetEarningsPrevMonth: " -300 EUR "},
	}
}

func TestDefaultColumns(t *testing.T) {
	cols := DefaultColumns()
	wantKeys := []string{"person", "past12Months", "y2d", "june", "july", "august", "netEarningsPrevMonth"}
	if got := Keys(cols); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}
	if cols[6].Header != "Net Earnings Prev Month" {
		t.Errorf("last header = %q", cols[6].Header)
	}

	cols[0].Header = "changed"
	if DefaultColumns()[0].Header != "Person" {
		t.Error("DefaultColumns should return a copy")
	}
}

func TestValue(t *testing.T) {
	r := sampleRows()[0]
	for _, c := range DefaultColumns() {
		if _, ok := Value(r, c.Key); !ok {
			t.Errorf("Value(%q) not found", c.Key)
		}
	}
	if v, _ := Value(r, "august"); v != " 90 %" {
		t.Errorf("Value(august) = %q", v)
	}
	if _, ok := Value(r, "september"); ok {
		t.Error("Value(september) should not be found")
	}
}

func TestParseColumns(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"empty selects all", "", Keys(defaultColumns), false},
		{"subset keeps order given", "y2d, person", []string{"y2d", "person"}, false},
		{"case insensitive", "PERSON,August", []string{"person", "august"}, false},
		{"duplicates dropped", "june,june", []string{"june"}, false},
		{"only commas", ",,", Keys(defaultColumns), false},
		{"unknown", "person,salary", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := ParseColumns(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColumns() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !clierrors.IsUserError(err) {
					t.Errorf("expected UserError, got %T", err)
				}
				return
			}
			if got := Keys(cols); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseColumns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	cols, _ := ParseColumns("person,august")
	tbl := Build(cols, sampleRows())

	if !reflect.DeepEqual(tbl.Headers, []string{"Person", "August"}) {
		t.Errorf("Headers = %v", tbl.Headers)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(tbl.Rows))
	}
	if !reflect.DeepEqual(tbl.Rows[2], []string{"Bob - ...", " 3 %"}) {
		t.Errorf("Rows[2] = %q", tbl.Rows[2])
	}

	empty := Build(DefaultColumns(), nil)
	if len(empty.Headers) != 7 || len(empty.Rows) != 0 {
		t.Errorf("Build(nil) = %+v", empty)
	}
}

func TestProject(t *testing.T) {
	cols, _ := ParseColumns("person,y2d")
	got := Project(cols, sampleRows()[:1])
	want := []map[string]string{{"person": "Cleo - ...", "y2d": " 25  % "}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Project() = %v, want %v", got, want)
	}
}

func TestSort(t *testing.T) {
	people := func(rs []rows.Row) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Person
		}
		return out
	}

	tests := []struct {
		name string
		key  string
		desc bool
		want []string
	}{
		{"none keeps order", "", false, []string{"Cleo - ...", "anna - ...", "Bob - ..."}},
		{"numeric percent", "past12Months", false, []string{"anna - ...", "Cleo - ...", "Bob - ..."}},
		{"numeric percent desc", "past12Months", true, []string{"Bob - ...", "Cleo - ...", "anna - ..."}},
		{"text case insensitive", "person", false, []string{"anna - ...", "Bob - ...", "Cleo - ..."}},
		{"numbers before text", "netEarningsPrevMonth", false, []string{"Bob - ...", "Cleo - ...", "anna - ..."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleRows()
			got, err := Sort(in, tt.key, tt.desc)
			if err != nil {
				t.Fatalf("Sort() error = %v", err)
			}
			if !reflect.DeepEqual(people(got), tt.want) {
				t.Errorf("Sort() = %v, want %v", people(got), tt.want)
			}
			if in[0].Person != "Cleo - ..." {
				t.Error("Sort must not reorder its input")
			}
		})
	}

	if _, err := Sort(sampleRows(), "salary", false); !clierrors.IsUserError(err) {
		t.Errorf("Sort(unknown) error = %v, want UserError", err)
	}
}

func TestLimit(t *testing.T) {
	data := sampleRows()
	if got := Limit(data, 0); len(got) != 3 {
		t.Errorf("Limit(0) len = %d", len(got))
	}
	if got := Limit(data, 2); len(got) != 2 || got[1].Person != "anna - ..." {
		t.Errorf("Limit(2) = %v", got)
	}
	if got := Limit(data, 10); len(got) != 3 {
		t.Errorf("Limit(10) len = %d", len(got))
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "table.xlsx")
	tbl := Build(DefaultColumns(), sampleRows())

	if err := WriteXLSX(path, "", tbl); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(DefaultSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(got))
	}
	if got[0][0] != "Person" || got[0][6] != "Net Earnings Prev Month" {
		t.Errorf("header row = %v", got[0])
	}
	if got[1][1] != "50 % " {
		t.Errorf("B2 = %q, want padded text", got[1][1])
	}
	if got[3][6] != " -300 EUR " {
		t.Errorf("G4 = %q", got[3][6])
	}
}
