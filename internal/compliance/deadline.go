package compliance

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// DateOnly truncates t to midnight UTC of its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueDate is the move-out calendar date plus the statutory number of calendar
// days. Business days and holidays are not considered.
func DueDate(moveOut time.Time, returnDeadlineDays int) time.Time {
	return DateOnly(moveOut).AddDate(0, 0, returnDeadlineDays)
}

// DaysRemaining is ceil((due - now) / 1 day). Negative means overdue by that
// many days.
func DaysRemaining(due, now time.Time) int {
	return int(math.Ceil(float64(due.Sub(now)) / float64(day)))
}

// HeldDays counts whole calendar days between lease start and move-out.
func HeldDays(leaseStart, moveOut time.Time) int {
	n := int(DateOnly(moveOut).Sub(DateOnly(leaseStart)) / day)
	if n < 0 {
		return 0
	}
	return n
}
