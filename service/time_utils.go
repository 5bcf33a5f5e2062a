package service

import (
	"time"
)

// GetNextResetTime calculates the next scheduling day boundary based on the configured hour
func GetNextResetTime(resetHour int) time.Time {
	return GetCurrentPeriodStart(resetHour).AddDate(0, 0, 1)
}

// GetCurrentPeriodStart calculates when the current scheduling day started
func GetCurrentPeriodStart(resetHour int) time.Time {
	return PeriodStartAt(time.Now(), resetHour)
}

// PeriodStartAt returns the start of the scheduling day containing now
func PeriodStartAt(now time.Time, resetHour int) time.Time {
	now = now.UTC()
	periodStart := time.Date(now.Year(), now.Month(), now.Day(), resetHour, 0, 0, 0, time.UTC)

	// Before today's reset we are still in yesterday's period
	if now.Before(periodStart) {
		periodStart = periodStart.AddDate(0, 0, -1)
	}

	return periodStart
}

// SchedulingDay returns the date marker stored on accounts processed at now
func SchedulingDay(now time.Time, resetHour int) time.Time {
	start := PeriodStartAt(now, resetHour)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}
