package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayLabel(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{
			name:     "earlier today",
			date:     time.Date(2024, 6, 10, 0, 1, 0, 0, time.UTC),
			expected: "today",
		},
		{
			name:     "late yesterday",
			date:     time.Date(2024, 6, 9, 23, 59, 0, 0, time.UTC),
			expected: "yesterday",
		},
		{
			name:     "same year",
			date:     time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
			expected: "2 Mar",
		},
		{
			name:     "previous year",
			date:     time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC),
			expected: "31 Dec 2023",
		},
		{
			name:     "other location",
			date:     time.Date(2024, 6, 10, 1, 0, 0, 0, time.FixedZone("CET", 3600)),
			expected: "today",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DayLabel(tt.date, now))
		})
	}
}
