// Package timeutil provides calendar-day utilities for the Smart LMS Platform.
// Learning activity is bucketed by UTC calendar date (revisit counting, daily
// activity summaries), so every helper here normalizes to UTC first.
// No external dependencies - uses only standard library.
package timeutil

import (
	"sort"
	"time"
)

// DayKeyLayout is the format used for calendar-day bucket keys.
const DayKeyLayout = "2006-01-02"

// StartOfDay returns midnight UTC of the day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last nanosecond of the UTC day containing t.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// DayKey returns the UTC calendar-date key for t (e.g. "2025-03-14").
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// DistinctDays returns the number of distinct UTC calendar dates among the
// given timestamps. Zero timestamps are ignored.
func DistinctDays(timestamps []time.Time) int {
	if len(timestamps) == 0 {
		return 0
	}
	days := make(map[string]struct{}, len(timestamps))
	for _, t := range timestamps {
		if t.IsZero() {
			continue
		}
		days[DayKey(t)] = struct{}{}
	}
	return len(days)
}

// DaysBetween returns the number of whole UTC days from a to b.
// Negative if b is before a.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// Latest returns the most recent of the given timestamps, or the zero time
// when the slice is empty.
func Latest(timestamps []time.Time) time.Time {
	var latest time.Time
	for _, t := range timestamps {
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}

// SortedDayKeys returns the distinct UTC day keys of the timestamps in
// ascending order. Used by activity timelines.
func SortedDayKeys(timestamps []time.Time) []string {
	seen := make(map[string]struct{}, len(timestamps))
	keys := make([]string, 0, len(timestamps))
	for _, t := range timestamps {
		if t.IsZero() {
			continue
		}
		key := DayKey(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// StartOfWeek returns Monday 00:00 UTC of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
