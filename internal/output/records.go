package output

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	json "github.com/goccy/go-json"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
)

const (
	fieldsHint   = "Example: --fields person,rate=past12Months"
	jsonPathHint = "Example: --jsonpath '$[0].person'"
)

// reshape runs --fields, --jsonpath and --query over data, in that order.
// The result holds one value per jq output, or the single reshaped value
// when no query is set.
func reshape(data any, o Options) ([]any, error) {
	if !o.Reshapes() {
		return []any{data}, nil
	}

	doc, err := toDocument(data)
	if err != nil {
		return nil, err
	}
	if o.Fields != "" {
		if doc, err = selectFields(doc, o.Fields); err != nil {
			return nil, err
		}
	}
	if o.JSONPath != "" {
		if doc, err = extractJSONPath(doc, o.JSONPath); err != nil {
			return nil, err
		}
	}
	if o.Query == "" {
		return []any{doc}, nil
	}

	f, err := compileJQ(o.Query)
	if err != nil {
		return nil, err
	}
	return f.run(doc)
}

// toDocument turns rows into the generic JSON shape (maps, slices, float64)
// that jq and JSONPath operate on.
func toDocument(data any) (any, error) {
	switch data.(type) {
	case map[string]any, []any:
		return data, nil
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	var doc any
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return doc, nil
}

// fieldSpec maps an output name to a record key.
type fieldSpec struct {
	name string
	key  string
}

// ValidateFields checks --fields syntax: comma-separated record keys, each
// optionally renamed with name=key.
func ValidateFields(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	_, err := parseFields(raw)
	return err
}

func parseFields(raw string) ([]fieldSpec, error) {
	var specs []fieldSpec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, key, renamed := strings.Cut(part, "=")
		name, key = strings.TrimSpace(name), strings.TrimSpace(key)
		if !renamed {
			key = name
		}
		if name == "" || key == "" {
			return nil, fmt.Errorf("invalid field %q: want key or name=key", part)
		}
		// Rows are flat, so a key is never a path.
		if strings.ContainsAny(key, ".[]") {
			return nil, fmt.Errorf("invalid field %q: use a column key, not a path", part)
		}
		specs = append(specs, fieldSpec{name: name, key: key})
	}
	if len(specs) == 0 {
		return nil, errors.New("no fields given")
	}
	return specs, nil
}

// selectFields keeps the listed keys of every record in doc. Unknown keys
// become null so all records share one shape.
func selectFields(doc any, raw string) (any, error) {
	specs, err := parseFields(raw)
	if err != nil {
		return nil, clierrors.WrapUserError(err, "invalid --fields value", fieldsHint)
	}

	pick := func(v any) any {
		rec, _ := v.(map[string]any)
		out := make(map[string]any, len(specs))
		for _, s := range specs {
			out[s.name] = rec[s.key]
		}
		return out
	}

	if list, ok := doc.([]any); ok {
		out := make([]any, len(list))
		for i, v := range list {
			out[i] = pick(v)
		}
		return out, nil
	}
	return pick(doc), nil
}

func extractJSONPath(doc any, expr string) (any, error) {
	v, err := jsonpath.Get(jsonPathExpr(expr), doc)
	if err != nil {
		return nil, clierrors.WrapUserError(err, "invalid --jsonpath value", jsonPathHint)
	}
	return v, nil
}

// jsonPathExpr anchors a relative path at the root: "[0].person" and
// "person" become "$[0].person" and "$.person".
func jsonPathExpr(expr string) string {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "", strings.HasPrefix(expr, "$"), strings.HasPrefix(expr, "@"):
		return expr
	case strings.HasPrefix(expr, "."), strings.HasPrefix(expr, "["):
		return "$" + expr
	}
	return "$." + expr
}

// isEmpty reports whether v holds no records.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case Table:
		return len(t.Rows) == 0
	case *Table:
		return t == nil || len(t.Rows) == 0
	}

	rv := derefValue(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}
