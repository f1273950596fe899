package table

import (
	"fmt"
	"sort"
	"strings"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
	"github.com/salmonumbrella/utilisation-cli/internal/numfmt"
	"github.com/salmonumbrella/utilisation-cli/internal/rows"
)

// Sort returns a copy of data ordered by the cells of column key. Cells that
// start with a number ("50 % ", " -300 EUR ") compare numerically and sort
// before cells that don't. Equal cells keep their input order.
func Sort(data []rows.Row, key string, desc bool) ([]rows.Row, error) {
	out := make([]rows.Row, len(data))
	copy(out, data)
	if key == "" {
		return out, nil
	}

	col, ok := lookup(key)
	if !ok {
		return nil, clierrors.NewUserError(
			fmt.Sprintf("cannot sort by unknown column %q", key),
			"Valid columns: "+strings.Join(Keys(defaultColumns), ", "),
		)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := Value(out[i], col.Key)
		b, _ := Value(out[j], col.Key)
		c := compareCells(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

// Limit returns at most n rows. n <= 0 means no limit.
func Limit(data []rows.Row, n int) []rows.Row {
	if n <= 0 || n >= len(data) {
		return data
	}
	return data[:n]
}

func compareCells(a, b string) int {
	av, aok := numfmt.ParsePrefix(a)
	bv, bok := numfmt.ParsePrefix(b)
	switch {
	case aok && bok:
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b)))
}
