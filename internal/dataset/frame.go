// Package dataset holds small helpers over gota dataframes: name cleaning,
// empty row/column removal, concatenation, column utilities, diffing, date
// differences and numeric summaries. Helpers never modify their input; they
// return the derived frame.
package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// NA is the cell text gota treats as a missing value when loading records
const NA = "NaN"

// frameErr returns df.Err wrapped with the operation name
func frameErr(op string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("%s: %w", op, df.Err)
	}
	return nil
}

// requireColumns checks that every name exists in df
func requireColumns(df dataframe.DataFrame, names ...string) error {
	have := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		have[n] = true
	}
	var missing []string
	for _, n := range names {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("column(s) not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

// isBlank reports whether a cell is missing or whitespace only
func isBlank(e series.Element) bool {
	return e.IsNA() || strings.TrimSpace(e.String()) == ""
}

// cellStrings returns the column as strings with missing cells as "". Floats
// use the shortest text that round-trips ("1.5", not "1.500000").
func cellStrings(s series.Series) []string {
	out := make([]string, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		if s.Type() == series.Float {
			out[i] = strconv.FormatFloat(e.Float(), 'f', -1, 64)
			continue
		}
		out[i] = e.String()
	}
	return out
}

// typesByName maps column name to its gota type
func typesByName(df dataframe.DataFrame) map[string]series.Type {
	out := make(map[string]series.Type, df.Ncol())
	for i, n := range df.Names() {
		out[n] = df.Types()[i]
	}
	return out
}

// emptyLike builds a zero-row frame with the given columns of df
func emptyLike(df dataframe.DataFrame, names []string) dataframe.DataFrame {
	return emptyTyped(names, typesByName(df))
}

// EmptyFrame builds a zero-row frame of string columns
func EmptyFrame(names []string) dataframe.DataFrame {
	return emptyTyped(names, nil)
}

func emptyTyped(names []string, types map[string]series.Type) dataframe.DataFrame {
	if len(names) == 0 {
		return dataframe.DataFrame{}
	}
	cols := make([]series.Series, len(names))
	for i, n := range names {
		t, ok := types[n]
		if !ok {
			t = series.String
		}
		cols[i] = series.New([]string{}, t, n)
	}
	return dataframe.New(cols...)
}

// FromTypedRecords loads a header-first record set. Columns named in types
// get that type; the rest are detected. Only NA marks a missing cell.
func FromTypedRecords(records [][]string, types map[string]series.Type) (dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no records to load")
	}
	if len(records) == 1 {
		return emptyTyped(records[0], types), nil
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithTypes(types),
		dataframe.NaNValues([]string{NA}),
	)
	return df, frameErr("load records", df)
}

// FromRecords loads a header-first record set, detecting column types.
// Cells equal to "" or NA are treated as missing.
func FromRecords(records [][]string) (dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no records to load")
	}
	if len(records) == 1 {
		return EmptyFrame(records[0]), nil
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"", NA, "NA", "<nil>"}),
	)
	if err := frameErr("load records", df); err != nil {
		return df, err
	}
	return df, nil
}
