package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "ISO", input: "2024-03-05", expected: "2024-03-05"},
		{name: "ISO with padding", input: "  2024-03-05 ", expected: "2024-03-05"},
		{name: "RFC3339", input: "2024-03-05T10:00:00Z", expected: "2024-03-05"},
		{name: "Full timestamp", input: "2024-03-05 23:59:59", expected: "2024-03-05"},
		{name: "European", input: "05.03.2024", expected: "2024-03-05"},
		{name: "European short", input: "5.3.2024", expected: "2024-03-05"},
		{name: "US", input: "03/05/2024", expected: "2024-03-05"},
		{name: "US short", input: "3/5/2024", expected: "2024-03-05"},
		{name: "Year first slashes", input: "2024/03/05", expected: "2024-03-05"},
		{name: "Day-Mon-Year", input: "5-Mar-2024", expected: "2024-03-05"},
		{name: "Day Mon Year", input: "5  Mar   2024", expected: "2024-03-05"},
		{name: "Month name", input: "March 5, 2024", expected: "2024-03-05"},
		{name: "Empty", input: "", wantErr: true},
		{name: "Garbage", input: "next tuesday", wantErr: true},
		{name: "Impossible day", input: "2024-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseDate_ReportsLayout(t *testing.T) {
	_, layout, err := ParseDate("05.03.2024")
	require.NoError(t, err)
	assert.Equal(t, DateLayoutEuropean, layout)
}

func TestStartAndEndOfMonth(t *testing.T) {
	tests := []struct {
		date  time.Time
		start string
		end   string
	}{
		{time.Date(2024, 2, 14, 15, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), "2023-02-01", "2023-02-28"},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "2024-12-01", "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			assert.Equal(t, tt.start, ToISODate(StartOfMonth(tt.date)))
			assert.Equal(t, tt.end, ToISODate(EndOfMonth(tt.date)))
		})
	}
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2024-04")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", start)
	assert.Equal(t, "2024-04-30", end)

	for _, bad := range []string{"", "2024-13", "April", "2024-04-01"} {
		_, _, err := MonthRange(bad)
		assert.Error(t, err, bad)
	}
}
