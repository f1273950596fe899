package output

import (
	"bytes"
	"context"
	"testing"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
)

func TestValidateFields(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"", false},
		{"person", false},
		{"person,rate=y2d", false},
		{" person , y2d ", false},
		{"=person", true},
		{"rate=", true},
		{"first=rows[0]", true},
		{"a.b", true},
		{",", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateFields(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFields(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestPrinter_Fields(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithOptions(context.Background(), Options{Fields: "who=person", CompactJSON: true})

	if err := NewPrinter(&buf, FormatJSON).Print(ctx, testRows()); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	want := `[{"who":"Cleo - ..."},{"who":"Bob - ..."}]` + "\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPrinter_FieldsMissingKeyIsNull(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithOptions(context.Background(), Options{Fields: "salary", CompactJSON: true})

	if err := NewPrinter(&buf, FormatJSON).Print(ctx, testRows()[:1]); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if got, want := buf.String(), `[{"salary":null}]`+"\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrinter_FieldsThenQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithOptions(context.Background(), Options{Fields: "rate=y2d", Query: ".[1].rate"})

	if err := NewPrinter(&buf, FormatNDJSON).Print(ctx, testRows()); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if got, want := buf.String(), "\" 5  % \"\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrinter_FieldsInvalid(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithOptions(context.Background(), Options{Fields: "x=a.b"})

	err := NewPrinter(&buf, FormatJSON).Print(ctx, testRows())
	if !clierrors.IsUserError(err) {
		t.Fatalf("expected UserError, got %v", err)
	}
}

func TestPrinter_JSONPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"$[1].person", "\"Bob - ...\"\n"},
		{"[0].y2d", "\" 25  % \"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := WithOptions(context.Background(), Options{JSONPath: tt.path})
			if err := NewPrinter(&buf, FormatJSON).Print(ctx, testRows()); err != nil {
				t.Fatalf("Print() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrinter_ReshapeRejectedForTables(t *testing.T) {
	for _, f := range []Format{FormatTable, FormatGrid} {
		var buf bytes.Buffer
		ctx := WithOptions(context.Background(), Options{Fields: "person"})
		err := NewPrinter(&buf, f).Print(ctx, testRows())
		if !clierrors.IsUserError(err) {
			t.Errorf("%s: expected UserError, got %v", f, err)
		}
	}
}

func TestJSONPathExpr(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"$.a":       "$.a",
		"@.a":       "@.a",
		".a":        "$.a",
		"[0]":       "$[0]",
		"a.b":       "$.a.b",
		"  [0].x  ": "$[0].x",
	}
	for in, want := range tests {
		if got := jsonPathExpr(in); got != want {
			t.Errorf("jsonPathExpr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	var nilRows *[]testRow
	tests := []struct {
		name string
		data any
		want bool
	}{
		{"nil", nil, true},
		{"empty table", Table{Headers: []string{"A"}}, true},
		{"table with rows", Table{Rows: [][]string{{"x"}}}, false},
		{"empty slice", []testRow{}, true},
		{"nil pointer", nilRows, true},
		{"empty map", map[string]any{}, true},
		{"scalar", "x", false},
		{"rows", testRows(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmpty(tt.data); got != tt.want {
				t.Errorf("isEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
