// Package calendar holds the date arithmetic used by the data helpers:
// business-day differences, date and month lists, and strftime layouts.
package calendar

import "time"

// Weekday indices with Monday as 0, matching the convention used throughout
// the package (time.Weekday starts the week on Sunday).
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const hoursPerDay = 24

// Weekday returns the Monday=0..Sunday=6 index of t
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether t falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	return Weekday(t) > Friday
}

// Date truncates t to its calendar date at UTC midnight. All day arithmetic in
// this package works on these values so time of day and DST never shift a
// difference by one.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeStart moves a Saturday or Sunday forward to the next Monday.
// Weekdays are returned unchanged.
func NormalizeStart(t time.Time) time.Time {
	d := Date(t)
	if wd := Weekday(d); wd > Friday {
		return d.AddDate(0, 0, 7-wd)
	}
	return d
}

// NormalizeEnd moves a Saturday or Sunday back to the preceding Friday.
// Weekdays are returned unchanged.
func NormalizeEnd(t time.Time) time.Time {
	d := Date(t)
	if wd := Weekday(d); wd > Friday {
		return d.AddDate(0, 0, -(wd - Friday))
	}
	return d
}

// CalendarDays returns the signed number of whole days from start to end
func CalendarDays(start, end time.Time) int {
	return int(Date(end).Sub(Date(start)).Hours() / hoursPerDay)
}

// BusinessDays counts the Monday-Friday days between start and end, both
// inclusive. A range that lies entirely inside one weekend yields 0, as does
// any range whose normalized start is after its normalized end.
func BusinessDays(start, end time.Time) int {
	start = NormalizeStart(start)
	end = NormalizeEnd(end)

	if start.After(end) {
		return 0
	}

	diffDays := CalendarDays(start, end) + 1
	weeks := diffDays / 7

	startWD, endWD := Weekday(start), Weekday(end)
	remainder := endWD - startWD + 1
	if remainder != 0 && endWD < startWD {
		remainder += 5
	}

	return weeks*5 + remainder
}
