package dataset

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CleanName lower-cases a column name and collapses every run of characters
// that are not letters or digits into a single underscore.
func CleanName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// CleanNames applies CleanName to every column. Empty results become
// column_N (1-based position) and duplicates get _2, _3, ... suffixes.
func CleanNames(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := frameErr("clean names", df); err != nil {
		return df, err
	}

	names := UniqueNames(df.Names())
	cols := make([]series.Series, len(names))
	for i, old := range df.Names() {
		s := df.Col(old).Copy()
		s.Name = names[i]
		cols[i] = s
	}

	out := dataframe.New(cols...)
	return out, frameErr("clean names", out)
}

// UniqueNames cleans a list of raw header names
func UniqueNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, n := range raw {
		name := CleanName(n)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for seen[name] > 0 {
			seen[base]++
			name = fmt.Sprintf("%s_%d", base, seen[base])
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// RemoveEmpty drops rows where every cell is blank, then columns where every
// remaining cell is blank.
func RemoveEmpty(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := frameErr("remove empty", df); err != nil {
		return df, err
	}

	names := df.Names()
	nrow := df.Nrow()

	var keepRows []int
	for i := 0; i < nrow; i++ {
		for _, n := range names {
			if !isBlank(df.Col(n).Elem(i)) {
				keepRows = append(keepRows, i)
				break
			}
		}
	}

	var keepCols []string
	for _, n := range names {
		col := df.Col(n)
		for _, i := range keepRows {
			if !isBlank(col.Elem(i)) {
				keepCols = append(keepCols, n)
				break
			}
		}
	}

	if len(keepRows) == 0 || len(keepCols) == 0 {
		return emptyLike(df, keepCols), nil
	}

	out := df.Subset(keepRows).Select(keepCols)
	return out, frameErr("remove empty", out)
}
