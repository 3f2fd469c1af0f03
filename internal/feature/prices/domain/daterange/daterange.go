// Package daterange builds the list of query dates for a month-keyed data source.
package daterange

import "time"

// Generate returns the dates to query between start and end.
//
// With end == nil it returns start alone (truncated to the day, not to the month).
// Otherwise it returns the first day of every month from start's month through end's
// month, ascending. If start is after end the result is empty.
func Generate(start time.Time, end *time.Time) []time.Time {
	s := Day(start)
	if end == nil {
		return []time.Time{s}
	}
	e := Day(*end)
	if s.After(e) {
		return []time.Time{}
	}

	dates := make([]time.Time, 0, monthsBetween(s, e)+1)
	for anchor := FirstOfMonth(s); !anchor.After(e); anchor = nextMonth(anchor) {
		dates = append(dates, anchor)
	}
	return dates
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FirstOfMonth returns midnight UTC of the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// nextMonth advances a first-of-month anchor by one month.
// time.Date normalizes month 13 to January of the following year.
func nextMonth(anchor time.Time) time.Time {
	return time.Date(anchor.Year(), anchor.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

func monthsBetween(s, e time.Time) int {
	return (e.Year()-s.Year())*12 + int(e.Month()) - int(s.Month())
}
