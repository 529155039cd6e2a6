package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDueDate(t *testing.T) {
	assert.Equal(t, date("2026-01-22"), DueDate(date("2026-01-01"), 21))

	t.Run("ignores time of day and zone", func(t *testing.T) {
		la, err := time.LoadLocation("America/Los_Angeles")
		if err != nil {
			t.Skip("tzdata unavailable")
		}
		moveOut := time.Date(2026, 1, 1, 9, 30, 0, 0, la)
		assert.Equal(t, date("2026-01-22"), DueDate(moveOut, 21))
	})

	t.Run("crosses month and leap day", func(t *testing.T) {
		assert.Equal(t, date("2028-03-01"), DueDate(date("2028-02-15"), 15))
	})
}

func TestDaysRemaining(t *testing.T) {
	due := date("2026-01-22")
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"exactly one day before", date("2026-01-21"), 1},
		{"half a day before rounds up", due.Add(-12 * time.Hour), 1},
		{"due now", due, 0},
		{"half a day overdue", due.Add(12 * time.Hour), 0},
		{"three days overdue", date("2026-01-25"), -3},
		{"three weeks out", date("2026-01-01"), 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysRemaining(due, tt.now))
		})
	}
}

func TestHeldDays(t *testing.T) {
	assert.Equal(t, 365, HeldDays(date("2025-01-01"), date("2026-01-01")))
	assert.Equal(t, 0, HeldDays(date("2026-01-01"), date("2025-01-01")))
}
