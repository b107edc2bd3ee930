// Package calendar provides date-key arithmetic on the local calendar.
// A date-key is a calendar date formatted as YYYY-MM-DD. Keys sort
// lexicographically in chronological order.
package calendar

import (
	"time"
)

// Layout is the date-key format.
const Layout = "2006-01-02"

// Week start values accepted by StartOfWeek.
const (
	WeekStartMonday = "monday"
	WeekStartSunday = "sunday"
)

// Format returns the local date-key for t.
func Format(t time.Time) string {
	return t.In(time.Local).Format(Layout)
}

// Today returns the local date-key for now.
func Today(now time.Time) string {
	return Format(now)
}

// Parse parses a date-key as local midnight.
func Parse(key string) (time.Time, error) {
	return time.ParseInLocation(Layout, key, time.Local)
}

// Valid reports whether key is a well-formed date-key.
func Valid(key string) bool {
	t, err := Parse(key)
	return err == nil && t.Format(Layout) == key
}

// AddDays shifts key by n calendar days. A malformed key is returned as-is.
func AddDays(key string, n int) string {
	t, err := Parse(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(Layout)
}

// PreviousDate returns the key one calendar day before key.
func PreviousDate(key string) string {
	return AddDays(key, -1)
}

// NextDate returns the key one calendar day after key.
func NextDate(key string) string {
	return AddDays(key, 1)
}

// DateRange returns n contiguous keys ending at end, oldest first.
func DateRange(end string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	keys := make([]string, n)
	cur := end
	for i := n - 1; i >= 0; i-- {
		keys[i] = cur
		cur = PreviousDate(cur)
	}
	return keys
}

// DaysBetween returns the number of calendar days from one key to another.
// The result is negative when to is before from.
func DaysBetween(from, to string) int {
	a, errA := Parse(from)
	b, errB := Parse(to)
	if errA != nil || errB != nil {
		return 0
	}
	// Compare in UTC to keep DST transitions out of the day count.
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// StartOfWeek returns the key of the first day of the week containing key.
// weekStart is "monday" or "sunday"; anything else is treated as monday.
func StartOfWeek(key, weekStart string) string {
	t, err := Parse(key)
	if err != nil {
		return key
	}
	offset := int(t.Weekday())
	if weekStart != WeekStartSunday {
		offset = (offset + 6) % 7
	}
	return t.AddDate(0, 0, -offset).Format(Layout)
}
