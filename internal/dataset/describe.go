package dataset

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/montanaflynn/stats"
)

// ColumnSummary holds summary statistics for one numeric column
type ColumnSummary struct {
	Column string
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Median float64
	Max    float64
}

// Describe summarizes every Int and Float column, skipping missing cells.
// StdDev is the sample standard deviation and is NaN below two values.
func Describe(df dataframe.DataFrame) ([]ColumnSummary, error) {
	if err := frameErr("describe", df); err != nil {
		return nil, err
	}

	var out []ColumnSummary
	for i, name := range df.Names() {
		t := df.Types()[i]
		if t != series.Int && t != series.Float {
			continue
		}
		summary, err := summarize(name, NumericValues(df.Col(name)))
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

// NumericValues returns the non-missing cells of s as floats
func NumericValues(s series.Series) []float64 {
	var data []float64
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		f := e.Float()
		if math.IsNaN(f) {
			continue
		}
		data = append(data, f)
	}
	return data
}

func summarize(name string, data []float64) (ColumnSummary, error) {
	summary := ColumnSummary{
		Column: name,
		Count:  len(data),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Min:    math.NaN(),
		Median: math.NaN(),
		Max:    math.NaN(),
	}
	if len(data) == 0 {
		return summary, nil
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, err
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, err
	}
	if len(data) > 1 {
		if summary.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// SummaryFrame renders summaries as a frame with one row per column
func SummaryFrame(summaries []ColumnSummary) dataframe.DataFrame {
	n := len(summaries)
	cols := make([]string, n)
	counts := make([]int, n)
	means := make([]float64, n)
	stds := make([]float64, n)
	mins := make([]float64, n)
	medians := make([]float64, n)
	maxes := make([]float64, n)
	for i, s := range summaries {
		cols[i] = s.Column
		counts[i] = s.Count
		means[i] = s.Mean
		stds[i] = s.StdDev
		mins[i] = s.Min
		medians[i] = s.Median
		maxes[i] = s.Max
	}
	return dataframe.New(
		series.New(cols, series.String, "column"),
		series.New(counts, series.Int, "count"),
		series.New(means, series.Float, "mean"),
		series.New(stds, series.Float, "std"),
		series.New(mins, series.Float, "min"),
		series.New(medians, series.Float, "median"),
		series.New(maxes, series.Float, "max"),
	)
}
