package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekday_MondayIsZero(t *testing.T) {
	assert.Equal(t, Monday, Weekday(day(1)))
	assert.Equal(t, Friday, Weekday(day(5)))
	assert.Equal(t, Saturday, Weekday(day(6)))
	assert.Equal(t, Sunday, Weekday(day(7)))
}

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"same weekday", day(3), day(3), 1},
		{"friday to next monday", day(5), day(8), 2},
		{"saturday to sunday", day(6), day(7), 0},
		{"single saturday", day(6), day(6), 0},
		{"monday to friday", day(1), day(5), 5},
		{"tuesday to next monday", day(2), day(8), 5},
		{"thursday to next monday", day(4), day(8), 3},
		{"friday to thursday two weeks later", day(5), day(18), 10},
		{"weekend start and end", day(6), day(14), 5},
		{"end before start", day(10), day(2), 0},
		{"full month", day(1), day(31), 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BusinessDays(tt.start, tt.end))
		})
	}
}

func TestBusinessDays_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*60*60)

	start := time.Date(2024, time.March, 8, 23, 30, 0, 0, loc)
	end := time.Date(2024, time.March, 11, 0, 15, 0, 0, loc)
	require.Equal(t, time.Friday, start.Weekday())
	assert.Equal(t, 2, BusinessDays(start, end))
}

func TestBusinessDays_MonotoneInEnd(t *testing.T) {
	start := day(3)
	prev := BusinessDays(start, start)

	for i := 1; i < 90; i++ {
		end := start.AddDate(0, 0, i)
		got := BusinessDays(start, end)
		if IsWeekend(end) {
			assert.Equal(t, prev, got, "weekend %s should not add a day", end.Format("2006-01-02"))
		} else {
			assert.Equal(t, prev+1, got, "weekday %s should add one day", end.Format("2006-01-02"))
		}
		prev = got
	}
}

func TestBusinessDays_MatchesDayByDayCount(t *testing.T) {
	for s := 1; s <= 14; s++ {
		for e := s; e <= 31; e++ {
			count := 0
			for d := s; d <= e; d++ {
				if !IsWeekend(day(d)) {
					count++
				}
			}
			assert.Equal(t, count, BusinessDays(day(s), day(e)), "start=%d end=%d", s, e)
		}
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, day(8), NormalizeStart(day(6)))
	assert.Equal(t, day(8), NormalizeStart(day(7)))
	assert.Equal(t, day(5), NormalizeEnd(day(6)))
	assert.Equal(t, day(5), NormalizeEnd(day(7)))

	for d := 1; d <= 5; d++ {
		assert.Equal(t, day(d), NormalizeStart(day(d)))
		assert.Equal(t, day(d), NormalizeEnd(day(d)))
		assert.Equal(t, NormalizeStart(day(d)), NormalizeStart(NormalizeStart(day(d))))
	}
}

func TestCalendarDays(t *testing.T) {
	assert.Equal(t, 7, CalendarDays(day(1), day(8)))
	assert.Equal(t, -7, CalendarDays(day(8), day(1)))
	assert.Equal(t, 0, CalendarDays(day(1).Add(23*time.Hour), day(1)))
}
