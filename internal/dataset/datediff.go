package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bizwiz/domain/calendar"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Calculation selects how DateDiff counts days
type Calculation string

const (
	CalendarDays Calculation = "calendar days"
	BusinessDays Calculation = "business days"
)

// ParseCalculation accepts the calculation name case-insensitively
func ParseCalculation(s string) (Calculation, error) {
	switch c := Calculation(strings.ToLower(strings.TrimSpace(s))); c {
	case CalendarDays, BusinessDays:
		return c, nil
	case "":
		return CalendarDays, nil
	}
	return "", fmt.Errorf("unknown calculation %q (want %q or %q)", s, CalendarDays, BusinessDays)
}

// DateDiffOptions configures DateDiff
type DateDiffOptions struct {
	StartCol    string
	EndCol      string
	DateFormat  string // strftime or Go layout; default %Y-%m-%d
	OutputCol   string // default date_diff
	Calculation Calculation
}

func (o *DateDiffOptions) setDefaults() {
	if o.DateFormat == "" {
		o.DateFormat = "%Y-%m-%d"
	}
	if o.OutputCol == "" {
		o.OutputCol = "date_diff"
	}
	if o.Calculation == "" {
		o.Calculation = CalendarDays
	}
}

// DateDiff parses the start and end columns and adds an integer column with
// the day difference per row. Rows where either date is missing or does not
// parse get a missing value.
func DateDiff(df dataframe.DataFrame, opts DateDiffOptions) (dataframe.DataFrame, error) {
	opts.setDefaults()
	if err := frameErr("date diff", df); err != nil {
		return df, err
	}
	if err := requireColumns(df, opts.StartCol, opts.EndCol); err != nil {
		return df, fmt.Errorf("date diff: %w", err)
	}
	calc, err := ParseCalculation(string(opts.Calculation))
	if err != nil {
		return df, fmt.Errorf("date diff: %w", err)
	}
	layout, err := calendar.ParseLayout(opts.DateFormat)
	if err != nil {
		return df, fmt.Errorf("date diff: %w", err)
	}

	starts := df.Col(opts.StartCol)
	ends := df.Col(opts.EndCol)
	values := make([]string, df.Nrow())
	for i := range values {
		start, okStart := parseCell(starts.Elem(i), layout)
		end, okEnd := parseCell(ends.Elem(i), layout)
		if !okStart || !okEnd {
			values[i] = NA
			continue
		}
		var n int
		if calc == BusinessDays {
			n = calendar.BusinessDays(start, end)
		} else {
			n = calendar.CalendarDays(start, end)
		}
		values[i] = strconv.Itoa(n)
	}

	out := df.Mutate(series.New(values, series.Int, opts.OutputCol))
	return out, frameErr("date diff", out)
}

func parseCell(e series.Element, layout string) (time.Time, bool) {
	if isBlank(e) {
		return time.Time{}, false
	}
	t, err := time.Parse(layout, strings.TrimSpace(e.String()))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
