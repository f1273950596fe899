package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

type jqFilter struct {
	code *gojq.Code
}

// ValidateQuery reports whether query compiles as jq.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	_, err := compileJQ(query)
	return err
}

func compileJQ(query string) (*jqFilter, error) {
	parsed, err := gojq.Parse(strings.TrimSpace(query))
	if err != nil {
		return nil, invalidQuery(err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, invalidQuery(err)
	}
	return &jqFilter{code: code}, nil
}

func invalidQuery(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "unexpected eof") {
		return fmt.Errorf("invalid --query: %w (query looks incomplete; quote it fully)", err)
	}
	return fmt.Errorf("invalid --query: %w", err)
}

// run collects every value the filter emits for doc. A bare "halt" ends
// the stream without an error.
func (f *jqFilter) run(doc any) ([]any, error) {
	var out []any
	iter := f.code.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			return out, nil
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return out, nil
			}
			return nil, fmt.Errorf("query error: %w", err)
		}
		out = append(out, v)
	}
}
