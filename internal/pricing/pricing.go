// Package pricing maps a shoot's quantity to its base price in GBP.
package pricing

import (
	"fmt"

	"github.com/invalid8th/bookingbot/internal/booking"
)

const (
	lifestyleMinimum = 150
	lifestyleHourly  = 100

	matchdaySmallSquad   = 300
	matchdayPerPlayer    = 100
	matchdaySquadCutoff  = 3
	lifestyleShortCutoff = 2
)

// Price returns the base price for a quantity. Quantities are validated at
// dialog time; an unknown quantity type is a programming error.
func Price(q booking.Quantity) int {
	switch v := q.(type) {
	case booking.Hours:
		if int(v) < lifestyleShortCutoff {
			return lifestyleMinimum
		}
		return int(v) * lifestyleHourly
	case booking.Players:
		if int(v) <= matchdaySquadCutoff {
			return matchdaySmallSquad
		}
		return int(v) * matchdayPerPlayer
	default:
		panic(fmt.Sprintf("pricing: unknown quantity type %T", q))
	}
}
