package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/invalid8th/bookingbot/internal/schedule"
)

// ErrNoActiveBooking is returned when a requester has no committed,
// non-terminal booking to act on.
var ErrNoActiveBooking = errors.New("booking: no active booking")

// Category identifies the kind of shoot being booked.
type Category string

const (
	CategoryLifestyle Category = "lifestyle"
	CategoryMatchday  Category = "matchday"
)

// Label returns the category's display name.
func (c Category) Label() string {
	switch c {
	case CategoryLifestyle:
		return "Lifestyle"
	case CategoryMatchday:
		return "Matchday"
	}
	return string(c)
}

// Quantity is the category-specific size of a shoot: hours for lifestyle,
// player count for matchday. Exactly one concrete type applies per booking.
type Quantity interface {
	Category() Category
	Units() int
	Duration() time.Duration
}

// Hours is a lifestyle shoot length in whole hours.
type Hours int

func (Hours) Category() Category { return CategoryLifestyle }

func (h Hours) Units() int { return int(h) }

func (h Hours) Duration() time.Duration { return time.Duration(h) * time.Hour }

// Players is a matchday headcount. Matchday shoots always block out three
// hours regardless of headcount.
type Players int

func (Players) Category() Category { return CategoryMatchday }

func (p Players) Units() int { return int(p) }

func (Players) Duration() time.Duration { return 3 * time.Hour }

// Status is the booking lifecycle state. Transitions are monotonic:
// collecting -> pending_pricing -> awaiting_payment -> confirmed.
type Status string

const (
	StatusCollecting      Status = "collecting"
	StatusPendingPricing  Status = "pending_pricing"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusConfirmed       Status = "confirmed"
)

// Booking is the central entity: one shoot request from one requester.
//
// DateLabel and TimeLabel keep the requester's original text for display;
// Start and End carry the parsed interval used for all computation. The two
// are never reconciled by reparsing the labels.
type Booking struct {
	ID     uuid.UUID
	ChatID int64

	Name     string
	Handle   string
	Location string

	DateLabel string
	TimeLabel string
	Start     time.Time
	End       time.Time

	Quantity  Quantity
	BasePrice int

	// TravelFee stays nil until the operator assigns it; zero is a valid fee.
	TravelFee *int

	Status    Status
	CreatedAt time.Time

	// Conflict is the advisory annotation attached when the dialog
	// completes. It never blocks the booking.
	Conflict *schedule.Conflict
}

// New creates an empty collecting-state booking for a requester.
func New(chatID int64, now time.Time) *Booking {
	return &Booking{
		ID:        uuid.New(),
		ChatID:    chatID,
		Status:    StatusCollecting,
		CreatedAt: now,
	}
}

// Category returns the shoot category implied by the quantity, or the empty
// category while the quantity step has not completed.
func (b *Booking) Category() Category {
	if b.Quantity == nil {
		return ""
	}
	return b.Quantity.Category()
}

// Total returns base price plus travel fee. ok is false until the operator
// has set the fee.
func (b *Booking) Total() (total int, ok bool) {
	if b.TravelFee == nil {
		return 0, false
	}
	return b.BasePrice + *b.TravelFee, true
}

// Interval returns the booking's derived time interval. ok is false while
// the dialog has not yet produced one.
func (b *Booking) Interval() (schedule.Interval, bool) {
	if b.Start.IsZero() || b.End.IsZero() {
		return schedule.Interval{}, false
	}
	return schedule.Interval{
		Start:  b.Start,
		End:    b.End,
		ChatID: b.ChatID,
		Ref:    b.Name,
	}, true
}
