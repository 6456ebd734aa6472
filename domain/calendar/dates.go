package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateList returns every stepDays-th date from start through end inclusive,
// optionally dropping Saturdays and Sundays. Dates are calendar dates at UTC
// midnight in ascending order.
func DateList(start, end time.Time, stepDays int, skipWeekends bool) ([]time.Time, error) {
	if stepDays < 1 {
		return nil, fmt.Errorf("step must be at least one day, got %d", stepDays)
	}

	start, end = Date(start), Date(end)
	if start.After(end) {
		start, end = end, start
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, stepDays) {
		if skipWeekends && IsWeekend(d) {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// MonthList returns the first day of every month that falls within
// [start, end].
func MonthList(start, end time.Time) []time.Time {
	start, end = Date(start), Date(end)
	if start.After(end) {
		start, end = end, start
	}

	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if first.Before(start) {
		first = first.AddDate(0, 1, 0)
	}

	var months []time.Time
	for d := first; !d.After(end); d = d.AddDate(0, 1, 0) {
		months = append(months, d)
	}
	return months
}

// FormatDates renders dates with a Go layout
func FormatDates(dates []time.Time, layout string) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(layout)
	}
	return out
}

var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
	'f': "000000",
	'%': "%",
}

// ParseLayout converts a strftime format such as "%Y-%m-%d" into a Go time
// layout. Strings without a '%' are assumed to already be Go layouts.
func ParseLayout(format string) (string, error) {
	if !strings.Contains(format, "%") {
		return format, nil
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("dangling %% at end of format %q", format)
		}
		i++
		layout, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in format %q", format[i], format)
		}
		b.WriteString(layout)
	}
	return b.String(), nil
}

// ParseDate parses value with a strftime or Go layout
func ParseDate(value, format string) (time.Time, error) {
	layout, err := ParseLayout(format)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(layout, strings.TrimSpace(value))
}
