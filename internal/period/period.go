// Package period computes membership validity windows from plan durations.
package period

import (
	"time"

	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

// Compute derives the validity window of an enrollment: the start is the
// beginning of the calendar day of the given instant, the end is the last
// millisecond (23:59:59.999) of the day `months` months later. Month
// arithmetic clamps to the last day of the target month, so Jan 31 + 1
// month ends on Feb 28/29 rather than rolling into March.
func Compute(start time.Time, months int) (time.Time, time.Time, error) {
	if months < 1 {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "plan duration must be at least one month")
	}

	startDate := startOfDay(start)
	endDate := endOfDay(addMonths(startDate, months))
	return startDate, endDate, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(target); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
