package utils

import (
	"fmt"
	"time"

	apperrors "github.com/Kamar-Folarin/release-dashboard/internal/errors"
)

// DateLayout is the calendar-day format used for daily buckets and query bounds
const DateLayout = "2006-01-02"

// IsWeekend reports whether t falls on Saturday or Sunday in t's location
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkingDay reports whether t falls on Monday through Friday
func IsWorkingDay(t time.Time) bool {
	return !IsWeekend(t)
}

// StartOfDay truncates t to midnight in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// WorkingDaysBetween counts working days in the inclusive range between a and b.
// The argument order does not matter.
func WorkingDaysBetween(a, b time.Time) int {
	from := StartOfDay(a)
	to := StartOfDay(b.In(a.Location()))
	if to.Before(from) {
		from, to = to, from
	}

	if from.Equal(to) {
		if IsWorkingDay(from) {
			return 1
		}
		return 0
	}

	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// ISOWeek returns the ISO-8601 week-numbering year and week of t
func ISOWeek(t time.Time) (year, week int) {
	return t.ISOWeek()
}

// PeriodKey formats t as the bucket key of the given granularity:
// 2006-01-02 for daily, 2006-W01 for weekly and 2006-01 for monthly.
func PeriodKey(t time.Time, timeframe string) string {
	switch timeframe {
	case "weekly":
		y, w := ISOWeek(t)
		return fmt.Sprintf("%04d-W%02d", y, w)
	case "monthly":
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	default:
		return t.Format(DateLayout)
	}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, DateLayout}

// ParseDate parses an RFC3339 timestamp or a YYYY-MM-DD date. Date-only
// values are interpreted as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("invalid date %q", s), nil)
}

// IsDateOnly reports whether s is a bare YYYY-MM-DD value
func IsDateOnly(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
