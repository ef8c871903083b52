package usecase

import (
	"time"

	"finscope/pkg/apperror"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// periodStart resolves a trailing window relative to now. Empty means month.
func periodStart(period string, now time.Time) (string, time.Time, error) {
	switch period {
	case "", PeriodMonth:
		return PeriodMonth, now.AddDate(0, -1, 0), nil
	case PeriodWeek:
		return PeriodWeek, now.AddDate(0, 0, -7), nil
	case PeriodYear:
		return PeriodYear, now.AddDate(-1, 0, 0), nil
	default:
		return "", time.Time{}, apperror.Validation("period must be one of week, month, year")
	}
}
