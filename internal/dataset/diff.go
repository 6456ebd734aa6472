package dataset

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

const keySep = "\x1f"

// Diff returns the rows of left whose key tuple does not appear in right.
// With no key columns, every column of left is used as the key.
func Diff(left, right dataframe.DataFrame, keyCols ...string) (dataframe.DataFrame, error) {
	if err := frameErr("diff left", left); err != nil {
		return left, err
	}
	if err := frameErr("diff right", right); err != nil {
		return right, err
	}
	if len(keyCols) == 0 {
		keyCols = left.Names()
	}
	if err := requireColumns(left, keyCols...); err != nil {
		return left, fmt.Errorf("diff left: %w", err)
	}
	if err := requireColumns(right, keyCols...); err != nil {
		return right, fmt.Errorf("diff right: %w", err)
	}

	seen := make(map[string]bool, right.Nrow())
	rightKeys := rowKeys(right, keyCols)
	for _, k := range rightKeys {
		seen[k] = true
	}

	var keep []int
	for i, k := range rowKeys(left, keyCols) {
		if !seen[k] {
			keep = append(keep, i)
		}
	}

	if len(keep) == 0 {
		return emptyLike(left, left.Names()), nil
	}
	out := left.Subset(keep)
	return out, frameErr("diff", out)
}

func rowKeys(df dataframe.DataFrame, cols []string) []string {
	columns := make([][]string, len(cols))
	for j, c := range cols {
		columns[j] = cellStrings(df.Col(c))
	}
	keys := make([]string, df.Nrow())
	parts := make([]string, len(cols))
	for i := range keys {
		for j := range cols {
			parts[j] = columns[j][i]
		}
		keys[i] = strings.Join(parts, keySep)
	}
	return keys
}
