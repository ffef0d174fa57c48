package pipeline

import (
	"time"

	"go-data-dashboard/internal/model"
	"go-data-dashboard/pkg/utils"
)

// PeriodStart truncates a date to the start of its period. Weeks are ISO
// weeks starting on Monday; months start on the 1st. Results are UTC midnight.
func PeriodStart(t time.Time, g model.Granularity) time.Time {
	day := utils.BeginDay(t)
	switch g {
	case model.Week:
		// Weekday() is 0 for Sunday; shift so Monday is 0.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case model.Month:
		yy, mm, _ := day.Date()
		return time.Date(yy, mm, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// PeriodEnd returns the last calendar date belonging to the period that starts at start.
func PeriodEnd(start time.Time, g model.Granularity) time.Time {
	switch g {
	case model.Week:
		return start.AddDate(0, 0, 6)
	case model.Month:
		return start.AddDate(0, 1, -1)
	default:
		return start
	}
}
