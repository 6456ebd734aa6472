package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ConcatHow selects how frames with different columns are stacked
type ConcatHow string

const (
	// Vertical requires every frame to have the same set of columns
	Vertical ConcatHow = "vertical"
	// Diagonal takes the union of columns in first-seen order; cells a frame
	// does not have are missing
	Diagonal ConcatHow = "diagonal"
)

// ParseConcatHow validates a user-supplied strategy name
func ParseConcatHow(s string) (ConcatHow, error) {
	switch ConcatHow(strings.ToLower(strings.TrimSpace(s))) {
	case Vertical:
		return Vertical, nil
	case Diagonal, "":
		return Diagonal, nil
	}
	return "", fmt.Errorf("unknown concat strategy %q (want vertical or diagonal)", s)
}

// Concat stacks frames row-wise
func Concat(frames []dataframe.DataFrame, how ConcatHow) (dataframe.DataFrame, error) {
	if len(frames) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("concat: no frames provided")
	}
	for i, df := range frames {
		if err := frameErr(fmt.Sprintf("concat frame %d", i), df); err != nil {
			return df, err
		}
	}
	if len(frames) == 1 {
		return frames[0], nil
	}

	switch how {
	case Vertical:
		return concatVertical(frames)
	case Diagonal:
		return concatDiagonal(frames)
	}
	return dataframe.DataFrame{}, fmt.Errorf("concat: unknown strategy %q", how)
}

func concatVertical(frames []dataframe.DataFrame) (dataframe.DataFrame, error) {
	expected := frames[0].Names()
	out := frames[0]
	for i, df := range frames[1:] {
		if err := validateSchemaCompatibility(expected, df.Names()); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("concat frame %d: %w", i+1, err)
		}
		out = out.RBind(df.Select(expected))
		if err := frameErr("concat", out); err != nil {
			return out, err
		}
	}
	return out, nil
}

func concatDiagonal(frames []dataframe.DataFrame) (dataframe.DataFrame, error) {
	var names []string
	types := make(map[string]series.Type)
	for _, df := range frames {
		for i, n := range df.Names() {
			t, seen := types[n]
			if !seen {
				names = append(names, n)
				types[n] = df.Types()[i]
				continue
			}
			types[n] = mergeType(t, df.Types()[i])
		}
	}

	records := [][]string{names}
	for _, df := range frames {
		cols := make([][]string, len(names))
		for j, n := range names {
			if err := requireColumns(df, n); err != nil {
				continue
			}
			cols[j] = cellStrings(df.Col(n))
		}
		for i := 0; i < df.Nrow(); i++ {
			row := make([]string, len(names))
			for j := range names {
				if cols[j] == nil || cols[j][i] == "" {
					row[j] = NA
					continue
				}
				row[j] = cols[j][i]
			}
			records = append(records, row)
		}
	}

	out, err := FromTypedRecords(records, types)
	if err != nil {
		return out, fmt.Errorf("concat: %w", err)
	}
	return out, nil
}

// mergeType picks a column type that holds cells of both a and b. Int widens
// to Float; any other mismatch falls back to String.
func mergeType(a, b series.Type) series.Type {
	switch {
	case a == b:
		return a
	case (a == series.Int && b == series.Float) || (a == series.Float && b == series.Int):
		return series.Float
	}
	return series.String
}

// validateSchemaCompatibility checks two header sets contain the same names
func validateSchemaCompatibility(expected, actual []string) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("column count mismatch: expected %d, got %d", len(expected), len(actual))
	}
	a := append([]string(nil), expected...)
	b := append([]string(nil), actual...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("column mismatch: %q vs %q", a[i], b[i])
		}
	}
	return nil
}
