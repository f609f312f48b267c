package workday

import (
	"math"
	"time"
)

// HoursPerDay is the capacity of one worker on one work-day.
const HoursPerDay = 8

// DateLayout is the ISO calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// Date truncates t to its calendar day in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse parses an ISO calendar date. ok is false for empty or malformed input.
func Parse(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Format renders a calendar date, or "" for the zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatPtr is Format for optional dates; nil and zero stay nil.
func FormatPtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := Format(*t)
	return &s
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns the number of whole calendar days from a to b.
// The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// DaysNeeded returns how many work-days a crew of crewSize needs to burn
// budgetHours. A non-positive budget needs no days; any positive budget
// needs at least one.
func DaysNeeded(budgetHours float64, crewSize int) int {
	if budgetHours <= 0 {
		return 0
	}
	if crewSize < 1 {
		crewSize = 1
	}
	days := int(math.Ceil(budgetHours / float64(HoursPerDay*crewSize)))
	if days < 1 {
		return 1
	}
	return days
}

// Advance returns the date on which the n-th work-day starting at start falls.
// A weekday start counts as day 1. Saturdays and Sundays are never counted
// and never returned for n >= 1. Public holidays are not considered.
func Advance(start time.Time, n int) time.Time {
	if n <= 0 {
		return start
	}

	current := Date(start)
	counted := 0
	if !IsWeekend(current) {
		counted = 1
	}

	for counted < n {
		current = current.AddDate(0, 0, 1)
		if !IsWeekend(current) {
			counted++
		}
	}

	return current
}

// Range returns every calendar day from start to end inclusive. When end is
// before start only start is returned.
func Range(start, end time.Time) []time.Time {
	start, end = Date(start), Date(end)
	if end.Before(start) {
		return []time.Time{start}
	}

	days := make([]time.Time, 0, DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
