package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDateStrictLayouts(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "2025-01-01", want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{input: "2025-01-01T19:30", want: time.Date(2025, 1, 1, 19, 30, 0, 0, time.UTC)},
		{input: "2025-01-01T19:30:15", want: time.Date(2025, 1, 1, 19, 30, 15, 0, time.UTC)},
		{input: "2025-01-01T19:30:00Z", want: time.Date(2025, 1, 1, 19, 30, 0, 0, time.UTC)},
		{input: "2025-01-01T19:30:00.250Z", want: time.Date(2025, 1, 1, 19, 30, 0, 250_000_000, time.UTC)},
		{input: "2025-01-01T19:30:00-05:00", want: time.Date(2025, 1, 2, 0, 30, 0, 0, time.UTC)},
		{input: "  2025-03-01  ", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			require.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDateLenientFallback(t *testing.T) {
	got, err := ParseDate("March 5, 2025")
	require.NoError(t, err)
	require.Equal(t, 2025, got.Year())
	require.Equal(t, time.March, got.Month())
	require.Equal(t, 5, got.Day())
}

func TestParseDateRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "definitely not a date"} {
		_, err := ParseDate(input)
		require.ErrorIs(t, err, ErrInvalidDate, "input %q", input)
	}
}
