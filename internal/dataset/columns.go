package dataset

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DictFromColumns maps each keyCol value to the valueCol value on the same
// row. When a key repeats, the last row wins.
func DictFromColumns(df dataframe.DataFrame, keyCol, valueCol string) (map[string]string, error) {
	if err := frameErr("dict from columns", df); err != nil {
		return nil, err
	}
	if err := requireColumns(df, keyCol, valueCol); err != nil {
		return nil, err
	}

	keys := df.Col(keyCol)
	values := df.Col(valueCol)
	out := make(map[string]string, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		v := values.Elem(i)
		if v.IsNA() {
			out[keys.Elem(i).String()] = ""
			continue
		}
		out[keys.Elem(i).String()] = v.String()
	}
	return out, nil
}

// RetainLeadingZero rewrites the given columns as ="value" so spreadsheet
// applications keep leading zeros when the export is opened.
func RetainLeadingZero(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	return mapStringColumns("retain leading zero", df, cols, func(v string) string {
		return `="` + v + `"`
	})
}

// FillLeadingZero left-pads the given columns with zeros to width characters.
// A leading sign stays in front of the padding. Missing cells stay missing.
func FillLeadingZero(df dataframe.DataFrame, width int, cols ...string) (dataframe.DataFrame, error) {
	if width < 1 {
		return df, fmt.Errorf("fill leading zero: width must be positive, got %d", width)
	}
	return mapStringColumns("fill leading zero", df, cols, func(v string) string {
		return ZFill(v, width)
	})
}

// ZFill pads s on the left with zeros until it is width characters long
func ZFill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	return sign + strings.Repeat("0", width-len(sign)-len(s)) + s
}

func mapStringColumns(op string, df dataframe.DataFrame, cols []string, fn func(string) string) (dataframe.DataFrame, error) {
	if err := frameErr(op, df); err != nil {
		return df, err
	}
	if err := requireColumns(df, cols...); err != nil {
		return df, fmt.Errorf("%s: %w", op, err)
	}

	out := df
	for _, c := range cols {
		src := df.Col(c)
		values := make([]string, src.Len())
		for i := range values {
			e := src.Elem(i)
			if e.IsNA() {
				values[i] = NA
				continue
			}
			values[i] = fn(e.String())
		}
		out = out.Mutate(series.New(values, series.String, c))
		if err := frameErr(op, out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// FlagColumn adds (or replaces) outCol with true where col holds one of values
func FlagColumn(df dataframe.DataFrame, col, outCol string, values ...string) (dataframe.DataFrame, error) {
	if err := frameErr("flag column", df); err != nil {
		return df, err
	}
	if err := requireColumns(df, col); err != nil {
		return df, fmt.Errorf("flag column: %w", err)
	}

	match := make(map[string]bool, len(values))
	for _, v := range values {
		match[v] = true
	}

	src := df.Col(col)
	flags := make([]bool, src.Len())
	for i := range flags {
		e := src.Elem(i)
		flags[i] = !e.IsNA() && match[e.String()]
	}

	out := df.Mutate(series.New(flags, series.Bool, outCol))
	return out, frameErr("flag column", out)
}
