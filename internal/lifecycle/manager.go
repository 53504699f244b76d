// Package lifecycle advances committed bookings through the staff-driven
// pricing, payment, and confirmation transitions.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/invalid8th/bookingbot/internal/booking"
	"github.com/invalid8th/bookingbot/internal/export"
	"github.com/invalid8th/bookingbot/internal/notify"
	"github.com/invalid8th/bookingbot/internal/observability/metrics"
	"github.com/invalid8th/bookingbot/pkg/logging"
)

var (
	// ErrUnauthorized rejects lifecycle commands from anyone but the
	// configured operator.
	ErrUnauthorized = errors.New("lifecycle: unauthorized")
	// ErrInvalidAmount rejects a negative travel fee.
	ErrInvalidAmount = errors.New("lifecycle: invalid amount")
	// ErrFeeNotSet rejects payment confirmation before a travel fee exists.
	ErrFeeNotSet = errors.New("lifecycle: travel fee not set")
	// ErrNoMatchingAwaitingPayment rejects a payment proof for a requester
	// with no booking awaiting payment.
	ErrNoMatchingAwaitingPayment = errors.New("lifecycle: no booking awaiting payment")
)

// Appender is the durable append sink for finalized bookings.
type Appender interface {
	Append(b booking.Booking, confirmedAt time.Time) error
}

// Manager executes operator commands against the booking store and emits
// the resulting notifications and artifacts. Delivery failures are logged
// and counted but never roll back a committed transition.
type Manager struct {
	store      *booking.Store
	notifier   notify.Notifier
	sink       Appender
	operatorID int64

	businessName string
	paymentNote  string
	paymentLink  string

	logger  *logging.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

// Options carries the non-dependency knobs of the manager.
type Options struct {
	OperatorChatID int64
	BusinessName   string
	PaymentNote    string
	PaymentLink    string
}

// NewManager constructs a lifecycle manager.
func NewManager(store *booking.Store, notifier notify.Notifier, sink Appender, opts Options, logger *logging.Logger, m *metrics.BookingMetrics) *Manager {
	if store == nil {
		panic("lifecycle: booking store required")
	}
	if notifier == nil {
		panic("lifecycle: notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		store:        store,
		notifier:     notifier,
		sink:         sink,
		operatorID:   opts.OperatorChatID,
		businessName: opts.BusinessName,
		paymentNote:  opts.PaymentNote,
		paymentLink:  opts.PaymentLink,
		logger:       logger,
		metrics:      m,
		now:          time.Now,
	}
}

// SetTravelFee assigns (or overwrites) the travel fee on a requester's
// committed draft, moves it to awaiting_payment, and sends the requester
// the final price with payment instructions.
func (m *Manager) SetTravelFee(ctx context.Context, actorID, chatID int64, amount int) (booking.Booking, error) {
	if actorID != m.operatorID {
		m.metrics.ObserveLifecycleError("set_travel_fee")
		return booking.Booking{}, ErrUnauthorized
	}
	if amount < 0 {
		m.metrics.ObserveLifecycleError("set_travel_fee")
		return booking.Booking{}, ErrInvalidAmount
	}

	b, err := m.store.UpdateDraft(chatID, func(b *booking.Booking) error {
		// A mid-dialog booking is not yet a committed draft.
		if b.Status == booking.StatusCollecting {
			return booking.ErrNoActiveBooking
		}
		fee := amount
		b.TravelFee = &fee
		b.Status = booking.StatusAwaitingPayment
		return nil
	})
	if err != nil {
		m.metrics.ObserveLifecycleError("set_travel_fee")
		return booking.Booking{}, err
	}

	total, _ := b.Total()
	m.logger.Info("travel fee set",
		"chat_id", chatID, "travel_fee", amount, "total", total)

	m.deliver(ctx, chatID, notify.PaymentInstructions(total, m.paymentNote, m.paymentLink))
	return b, nil
}

// ConfirmPayment verifies payment for a requester's booking: the draft is
// finalized, persisted to the append sink, and both parties receive a
// confirmation with the calendar artifact. A repeated call fails with
// booking.ErrNoActiveBooking because the draft has already moved.
func (m *Manager) ConfirmPayment(ctx context.Context, actorID, chatID int64) (booking.Booking, error) {
	if actorID != m.operatorID {
		m.metrics.ObserveLifecycleError("confirm_payment")
		return booking.Booking{}, ErrUnauthorized
	}

	confirmedAt := m.now()
	b, err := m.store.Finalize(chatID, func(b *booking.Booking) error {
		if b.Status == booking.StatusCollecting {
			return booking.ErrNoActiveBooking
		}
		if b.TravelFee == nil {
			return ErrFeeNotSet
		}
		return nil
	})
	if err != nil {
		m.metrics.ObserveLifecycleError("confirm_payment")
		return booking.Booking{}, err
	}

	m.metrics.ObserveBookingConfirmed()
	total, _ := b.Total()
	m.logger.Info("booking confirmed",
		"chat_id", chatID, "booking_id", b.ID, "total", total)

	if m.sink != nil {
		if err := m.sink.Append(b, confirmedAt); err != nil {
			// The booking stays confirmed; the sink is an external
			// collaborator whose failure must not unwind state.
			m.metrics.ObserveDeliveryFailure()
			m.logger.Error("append sink failed", "chat_id", chatID, "error", err)
		}
	}

	name, data := export.CalendarEvent(b, m.businessName, confirmedAt)
	doc := &notify.Document{Name: name, Data: data}

	m.deliver(ctx, chatID, notify.Message{
		Text:     fmt.Sprintf("Booking confirmed for %s at %s. See you there!", b.DateLabel, b.TimeLabel),
		Document: doc,
	})
	m.deliver(ctx, m.operatorID, notify.Message{
		Text:     fmt.Sprintf("Payment confirmed: %s (%s), %s %s, £%d.", b.Name, b.Handle, b.DateLabel, b.TimeLabel, total),
		Document: doc,
	})
	return b, nil
}

// RecordPaymentProof forwards a payment-proof artifact to the operator with
// the expected total. It never changes booking status; only ConfirmPayment
// does. The requester may submit their own proof; anyone else needs to be
// the operator.
func (m *Manager) RecordPaymentProof(ctx context.Context, actorID, chatID int64, proofID string) (booking.Booking, error) {
	if actorID != m.operatorID && actorID != chatID {
		m.metrics.ObserveLifecycleError("record_payment_proof")
		return booking.Booking{}, ErrUnauthorized
	}

	b, ok := m.store.Draft(chatID)
	if !ok || b.Status != booking.StatusAwaitingPayment {
		m.metrics.ObserveLifecycleError("record_payment_proof")
		return booking.Booking{}, ErrNoMatchingAwaitingPayment
	}

	total, _ := b.Total()
	m.logger.Info("payment proof recorded", "chat_id", chatID, "proof_id", proofID)

	m.deliver(ctx, m.operatorID, notify.Message{
		Text:      fmt.Sprintf("Payment proof from %s (%s). Expected total £%d. Confirm with /paid %d.", b.Name, b.Handle, total, chatID),
		ForwardID: proofID,
	})
	return b, nil
}

// deliver sends a notification and absorbs delivery failure.
func (m *Manager) deliver(ctx context.Context, chatID int64, msg notify.Message) {
	if err := m.notifier.Send(ctx, chatID, msg); err != nil {
		m.metrics.ObserveDeliveryFailure()
		m.logger.Error("notification delivery failed", "chat_id", chatID, "error", err)
	}
}
