package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulingDay(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		resetHour int
		expected  time.Time
	}{
		{
			name:      "after reset hour belongs to today",
			now:       time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
			resetHour: 12,
			expected:  time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "before reset hour belongs to yesterday",
			now:       time.Date(2024, 5, 10, 11, 59, 59, 0, time.UTC),
			resetHour: 12,
			expected:  time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "midnight reset follows the calendar",
			now:       time.Date(2024, 5, 10, 0, 0, 1, 0, time.UTC),
			resetHour: 0,
			expected:  time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "non-UTC input is normalized",
			now:       time.Date(2024, 5, 10, 21, 0, 0, 0, time.FixedZone("UTC+10", 10*3600)),
			resetHour: 12,
			expected:  time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SchedulingDay(tt.now, tt.resetHour))
		})
	}
}

func TestPeriodBoundaries(t *testing.T) {
	start := GetCurrentPeriodStart(12)
	next := GetNextResetTime(12)

	assert.Equal(t, 24*time.Hour, next.Sub(start))
	assert.False(t, time.Now().Before(start))
	assert.True(t, time.Now().Before(next))
}
