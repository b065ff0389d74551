package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"2025-01-10", true},
		{"2024-02-29", true},
		{"2025-02-29", false},
		{"2025-1-10", false},
		{"2025-01-10T00:00:00Z", false},
		{"", false},
		{"10/01/2025", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDay(tt.input)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.input, d.String())
			} else {
				assert.ErrorIs(t, err, ErrInvalidInterval)
			}
		})
	}
}

func TestDayRange(t *testing.T) {
	r, err := ParseDayRange("2025-01-10", "2025-01-12")
	require.NoError(t, err)
	assert.Equal(t, 3, r.Days())
	assert.True(t, r.Contains("2025-01-10"))
	assert.True(t, r.Contains("2025-01-12"))
	assert.False(t, r.Contains("2025-01-13"))
	assert.False(t, r.Contains("2025-01-09"))

	single, err := ParseDayRange("2025-03-30", "2025-03-30")
	require.NoError(t, err)
	assert.Equal(t, 1, single.Days())

	_, err = ParseDayRange("2025-01-12", "2025-01-10")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestDayRange_AcrossMonthAndYearBoundaries(t *testing.T) {
	r, err := ParseDayRange("2024-12-30", "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, 4, r.Days())

	leap, err := ParseDayRange("2024-02-28", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 3, leap.Days())
	assert.True(t, leap.Contains("2024-02-29"))
}
