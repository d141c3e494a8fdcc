// Package bucket holds the time arithmetic shared by ingestion and querying:
// canonical minute keys, hour bucket boundaries, and the text representation
// of a minute in the counter table.
package bucket

import (
	"fmt"
	"time"
)

// MinuteLayout is the canonical text form of a UTC minute as stored in the
// events_aggregation table, e.g. "2021-03-01 14:20:00+00:00". Within this
// layout lexicographic order equals chronological order, which the storage
// adapter relies on for range comparisons.
const MinuteLayout = "2006-01-02 15:04:05+00:00"

// MinuteOf returns the canonical minute key for a timestamp: converted to UTC
// and truncated to zero seconds and sub-seconds.
func MinuteOf(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// HourOf returns the hour bucket boundary containing t, in UTC.
// Example: HourOf(14:35:42) → 14:00:00.
func HourOf(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// HourStartsBetween enumerates the hour boundaries spanned by the half-open
// window [start, end). The first entry is HourOf(start); the last is the hour
// containing end, or the preceding hour when end falls exactly on a boundary.
// Returns nil when start >= end.
func HourStartsBetween(start, end time.Time) []time.Time {
	end = end.UTC()

	var hours []time.Time
	for h := HourOf(start); h.Before(end); h = h.Add(time.Hour) {
		hours = append(hours, h)
	}
	return hours
}

// FormatMinute renders any instant in the canonical minute-column layout.
// The instant is normalized to UTC but seconds are kept, so the same layout
// serves both minute keys and range bounds.
func FormatMinute(t time.Time) string {
	return t.UTC().Format(MinuteLayout)
}

// ParseMinute parses the canonical minute-column representation.
func ParseMinute(s string) (time.Time, error) {
	t, err := time.Parse(MinuteLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute %q: %w", s, err)
	}
	return t.UTC(), nil
}
