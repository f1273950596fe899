package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", context.Canceled, ExitCanceled},
		{"wrapped_canceled", fmt.Errorf("load: %w", context.Canceled), ExitCanceled},
		{"user", clierrors.NewUserError("bad", "hint"), ExitUser},
		{"validation", &clierrors.ValidationError{Field: "x", Message: "bad"}, ExitUser},
		{"source_not_found", clierrors.SourceNotFoundError("data.json", fs.ErrNotExist), ExitNotFound},
		{"source_invalid", clierrors.WrapUserError(clierrors.WrapSource("data.json", errors.New("bad json")), "invalid source data", ""), ExitUser},
		{"system", errors.New("boom"), ExitSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
