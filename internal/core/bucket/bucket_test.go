package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMinuteOf(t *testing.T) {
	offset := time.FixedZone("UTC+2", 2*60*60)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "truncates seconds and subseconds",
			in:   time.Date(2021, 3, 1, 14, 20, 42, 123456789, time.UTC),
			want: time.Date(2021, 3, 1, 14, 20, 0, 0, time.UTC),
		},
		{
			name: "normalizes offset to UTC",
			in:   time.Date(2021, 3, 1, 16, 20, 30, 0, offset),
			want: time.Date(2021, 3, 1, 14, 20, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MinuteOf(tc.in))
		})
	}
}

func TestHourOf(t *testing.T) {
	ts := time.Date(2021, 3, 1, 14, 59, 59, 999999999, time.UTC)
	require.Equal(t, time.Date(2021, 3, 1, 14, 0, 0, 0, time.UTC), HourOf(ts))

	boundary := time.Date(2021, 3, 1, 15, 0, 0, 0, time.UTC)
	require.Equal(t, boundary, HourOf(boundary))
}

func TestHourStartsBetween(t *testing.T) {
	hour := func(h int) time.Time {
		return time.Date(2021, 3, 1, h, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []time.Time
	}{
		{
			name:  "mid-hour start and end",
			start: time.Date(2021, 3, 1, 14, 15, 0, 0, time.UTC),
			end:   time.Date(2021, 3, 1, 16, 45, 0, 0, time.UTC),
			want:  []time.Time{hour(14), hour(15), hour(16)},
		},
		{
			name:  "end exactly on hour boundary yields preceding hour last",
			start: time.Date(2021, 3, 1, 14, 15, 0, 0, time.UTC),
			end:   hour(18),
			want:  []time.Time{hour(14), hour(15), hour(16), hour(17)},
		},
		{
			name:  "window inside one hour",
			start: time.Date(2021, 3, 1, 14, 10, 0, 0, time.UTC),
			end:   time.Date(2021, 3, 1, 14, 50, 0, 0, time.UTC),
			want:  []time.Time{hour(14)},
		},
		{
			name:  "empty window",
			start: hour(14),
			end:   hour(14),
			want:  nil,
		},
		{
			name:  "inverted window",
			start: hour(15),
			end:   hour(14),
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, HourStartsBetween(tc.start, tc.end))
		})
	}
}

func TestMinuteFormatRoundTrip(t *testing.T) {
	minute := time.Date(2021, 3, 1, 14, 20, 0, 0, time.UTC)

	formatted := FormatMinute(minute)
	require.Equal(t, "2021-03-01 14:20:00+00:00", formatted)

	parsed, err := ParseMinute(formatted)
	require.NoError(t, err)
	require.Equal(t, minute, parsed)
}

func TestFormatMinuteKeepsLexicographicOrder(t *testing.T) {
	// The adapter compares minute text against instant text; both must sort
	// chronologically in the shared layout.
	earlier := FormatMinute(time.Date(2021, 3, 1, 14, 20, 0, 0, time.UTC))
	bound := FormatMinute(time.Date(2021, 3, 1, 14, 20, 30, 0, time.UTC))
	later := FormatMinute(time.Date(2021, 3, 1, 14, 21, 0, 0, time.UTC))

	require.Less(t, earlier, bound)
	require.Less(t, bound, later)
}

func TestParseMinuteRejectsGarbage(t *testing.T) {
	_, err := ParseMinute("not-a-minute")
	require.Error(t, err)
}
