package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
)

func requireRows(df dataframe.DataFrame, chart string, cols ...string) error {
	if df.Err != nil {
		return errors.Wrap(df.Err, chart)
	}
	names := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		names[n] = true
	}
	for _, c := range cols {
		if !names[c] {
			return errors.InvalidInput(fmt.Sprintf("%s: column %q not found", chart, c))
		}
	}
	if df.Nrow() == 0 {
		return errors.InvalidInput(fmt.Sprintf("%s: no rows to plot", chart))
	}
	return nil
}

// numbers returns a column as floats with NaN for missing or non-numeric cells
func numbers(df dataframe.DataFrame, col string) []float64 {
	s := df.Col(col)
	out := make([]float64, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.Float()
	}
	return out
}

func labels(df dataframe.DataFrame, col string) []string {
	s := df.Col(col)
	out := make([]string, s.Len())
	for i := range out {
		if e := s.Elem(i); !e.IsNA() {
			out[i] = e.String()
		}
	}
	return out
}

// finite drops NaN and infinite values
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// span returns the finite min and max of values, ok is false when there are none
func span(values []float64) (min, max float64, ok bool) {
	f := finite(values)
	if len(f) == 0 {
		return 0, 0, false
	}
	return floats.Min(f), floats.Max(f), true
}

// sortDesc orders df by col, largest first
func sortDesc(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	sorted := df.Arrange(dataframe.RevSort(col))
	if sorted.Err != nil {
		return df, errors.Wrap(sorted.Err, fmt.Sprintf("failed to sort by %s", col))
	}
	return sorted, nil
}

// uniqueSorted returns the distinct non-empty values of s, numerically ordered
// when every value parses as a number
func uniqueSorted(s series.Series) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() || seen[e.String()] {
			continue
		}
		seen[e.String()] = true
		out = append(out, e.String())
	}

	numeric := true
	keys := make([]float64, len(out))
	for i, v := range out {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			break
		}
		keys[i] = f
	}
	if numeric {
		idx := make([]int, len(out))
		floats.Argsort(keys, idx)
		sorted := make([]string, len(out))
		for i, j := range idx {
			sorted[i] = out[j]
		}
		return sorted
	}
	sort.Strings(out)
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
