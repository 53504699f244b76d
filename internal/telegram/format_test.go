package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/invalid8th/bookingbot/internal/booking"
	"github.com/invalid8th/bookingbot/internal/schedule"
)

func sampleBooking() booking.Booking {
	return booking.Booking{
		ChatID:    42,
		Name:      "Jordan Reyes",
		Handle:    "@jordan",
		DateLabel: "24 Nov 2025",
		TimeLabel: "14:00",
		Location:  "Shoreditch",
		Quantity:  booking.Hours(3),
		BasePrice: 300,
	}
}

func TestRequesterSummary(t *testing.T) {
	text := requesterSummary(sampleBooking())

	assert.Contains(t, text, "Jordan Reyes")
	assert.Contains(t, text, "24 Nov 2025 at 14:00")
	assert.Contains(t, text, "Lifestyle, 3 hours")
	assert.Contains(t, text, "£300")
	assert.NotContains(t, text, "@jordan")
}

func TestOperatorSummaryIncludesFeeHint(t *testing.T) {
	text := operatorSummary(sampleBooking())

	assert.Contains(t, text, "Jordan Reyes (@jordan)")
	assert.Contains(t, text, "/fee 42 <amount>")
}

func TestQuantityLineMatchday(t *testing.T) {
	b := sampleBooking()
	b.Quantity = booking.Players(5)

	assert.Equal(t, "Matchday, 5 players", quantityLine(b))
}

func TestConflictWarning(t *testing.T) {
	start := time.Date(2025, 11, 24, 10, 0, 0, 0, time.Local)
	nearest := &schedule.Interval{Start: start, End: start.Add(2 * time.Hour), Ref: "Other"}

	t.Run("clear", func(t *testing.T) {
		assert.Empty(t, conflictWarning(schedule.Conflict{}))
	})

	t.Run("overlap", func(t *testing.T) {
		text := conflictWarning(schedule.Conflict{Overlaps: true, Nearest: nearest})
		assert.Contains(t, text, "overlaps another booking")
		assert.Contains(t, text, "Mon 24 Nov 10:00 to 12:00")
	})

	t.Run("close gap", func(t *testing.T) {
		text := conflictWarning(schedule.Conflict{CloseGap: true, Nearest: nearest, Gap: 90 * time.Minute})
		assert.Contains(t, text, "only 1h30m0s away")
	})
}
