package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/salmonumbrella/utilisation-cli/internal/table"
)

func decodeRows(t *testing.T, out string) []map[string]string {
	t.Helper()
	var got []map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return got
}

func TestTable_JSONRows(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, fixtureJSON)

	out, _, err := runCLI(t, "", "table", "--source", src, "-o", "json")
	if err != nil {
		t.Fatalf("table: %v", err)
	}

	got := decodeRows(t, out)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	want := map[string]string{
		"person":               "Anna - ...",
		"past12Months":         "50 % ",
		"y2d":                  " 25  % ",
		"june":                 " 70 %",
		"july":                 " 80 %",
		"august":               " 90 %",
		"netEarningsPrevMonth": " 1200.5 EUR ",
	}
	for k, v := range want {
		if got[0][k] != v {
			t.Errorf("row 0 %s = %q, want %q", k, got[0][k], v)
		}
	}
	if got[1]["person"] != "Bob - ..." || got[1]["august"] != " 40 %" || got[1]["netEarningsPrevMonth"] != " -300 EUR " {
		t.Errorf("row 1 = %v", got[1])
	}
}

func TestTable_DefaultsToJSONWhenPiped(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, fixtureJSON)

	out, _, err := runCLI(t, "", "table", "-s", src)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "[") {
		t.Errorf("expected JSON array, got %q", out)
	}
}

func TestTable_TextFormat(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, fixtureJSON)

	out, _, err := runCLI(t, "", "table", "-s", src, "-o", "table")
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Person") || !strings.Contains(lines[0], "Net Earnings Prev Month") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Anna - ...") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestTable_Columns(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, fixtureJSON)

	out, _, err := runCLI(t, "", "table", "-s", src, "-o", "json", "--columns", "person,y2d")
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	got := decodeRows(t, out)
	if len(got[0]) != 2 || got[0]["y2d"] != " 25  % " {
		t.Errorf("row 0 = %v", got[0])
	}
}

func TestTable_SortAndLimit(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, fixtureJSON)

	out, _, err := runCLI(t, "", "table", "-s", src, "-o", "json", "--sort-by", "y2d", "--desc", "--limit", "1")
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	got := decodeRows(t, out)
	if len(got) != 1 || got[0]["person"] != "Bob - ..." {
		t.Errorf("got %v, want only Bob", got)
	}
}

func TestTable_Stdin(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, fixtureJSON, "table", "-s", "-", "-o", "json", "--query", ".[].person")
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if want := "\"Anna - ...\"\n\"Bob - ...\"\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestTable_MissingSource(t *testing.T) {
	dir := isolateEnv(t)

	_, stderr, err := runCLI(t, "", "table", "-s", filepath.Join(dir, "missing.json"), "-o", "json")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := ExitCode(err); code != ExitNotFound {
		t.Errorf("exit code = %d, want %d", code, ExitNotFound)
	}

	var env map[string]map[string]any
	if jerr := json.Unmarshal([]byte(stderr), &env); jerr != nil {
		t.Fatalf("stderr is not a JSON envelope: %q", stderr)
	}
	if env["error"]["type"] != "source" {
		t.Errorf("type = %v, want source", env["error"]["type"])
	}
}

func TestTable_Strict(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, `[{"employees": {"firstname": "Cleo", "workforceUtilisation": {"utilisationRateYearToDate": "n/a"}}}]`)

	if _, _, err := runCLI(t, "", "table", "-s", src, "-o", "json"); err != nil {
		t.Fatalf("non-strict run should succeed: %v", err)
	}

	_, stderr, err := runCLI(t, "", "table", "-s", src, "-o", "text", "--strict")
	if code := ExitCode(err); code != ExitUser {
		t.Fatalf("exit code = %d, want %d (err %v)", code, ExitUser, err)
	}
	if !strings.Contains(stderr, "row 0: y2d:") {
		t.Errorf("stderr = %q, want warning line", stderr)
	}
}

func TestTable_InvalidOutput(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "", "table", "-o", "xml")
	if code := ExitCode(err); code != ExitUser {
		t.Errorf("exit code = %d, want %d (err %v)", code, ExitUser, err)
	}
}

func TestTable_DescWithoutSort(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "", "table", "--desc")
	if code := ExitCode(err); code != ExitUser {
		t.Errorf("exit code = %d, want %d (err %v)", code, ExitUser, err)
	}
}

func TestTable_FailEmpty(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, `[]`)

	if _, _, err := runCLI(t, "", "table", "-s", src, "-o", "json"); err != nil {
		t.Fatalf("empty source should succeed: %v", err)
	}
	_, _, err := runCLI(t, "", "table", "-s", src, "-o", "json", "--fail-empty")
	if code := ExitCode(err); code != ExitUser {
		t.Errorf("exit code = %d, want %d (err %v)", code, ExitUser, err)
	}
}

func TestTable_SourceFromConfig(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, fixtureJSON)

	if _, _, err := runCLI(t, "", "config", "set", "source", src); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, _, err := runCLI(t, "", "table", "-o", "json")
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if got := decodeRows(t, out); len(got) != 2 {
		t.Errorf("got %d rows, want 2", len(got))
	}
}

func TestColumns(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, "", "columns", "-o", "json")
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	var cols []table.Column
	if err := json.Unmarshal([]byte(out), &cols); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cols) != 7 || cols[0].Key != "person" || cols[6].Key != "netEarningsPrevMonth" {
		t.Errorf("columns = %v", cols)
	}
}

func TestExport(t *testing.T) {
	dir := isolateEnv(t)
	src := writeFixture(t, dir, fixtureJSON)
	dest := filepath.Join(dir, "out", "utilisation.xlsx")

	if _, _, err := runCLI(t, "", "export", dest, "-s", src, "--sheet", "Q3"); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(dest)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetRows("Q3")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	if got[0][0] != "Person" || got[1][2] != " 25  % " || got[2][0] != "Bob - ..." {
		t.Errorf("rows = %q", got)
	}
}

func TestExport_RequiresXLSX(t *testing.T) {
	dir := isolateEnv(t)

	_, _, err := runCLI(t, "", "export", filepath.Join(dir, "out.csv"))
	if code := ExitCode(err); code != ExitUser {
		t.Errorf("exit code = %d, want %d (err %v)", code, ExitUser, err)
	}
}
