package lifecycle

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invalid8th/bookingbot/internal/booking"
	"github.com/invalid8th/bookingbot/internal/notify"
	"github.com/invalid8th/bookingbot/pkg/logging"
)

const operatorID int64 = 777

type sentMessage struct {
	chatID int64
	msg    notify.Message
}

type stubNotifier struct {
	sent []sentMessage
	err  error
}

func (s *stubNotifier) Send(ctx context.Context, chatID int64, msg notify.Message) error {
	s.sent = append(s.sent, sentMessage{chatID: chatID, msg: msg})
	return s.err
}

type stubSink struct {
	appended []booking.Booking
	err      error
}

func (s *stubSink) Append(b booking.Booking, confirmedAt time.Time) error {
	s.appended = append(s.appended, b)
	return s.err
}

func newTestManager(t *testing.T) (*Manager, *booking.Store, *stubNotifier, *stubSink) {
	t.Helper()
	store := booking.NewStore(logging.NewWithWriter(io.Discard, "error"))
	notifier := &stubNotifier{}
	sink := &stubSink{}
	m := NewManager(store, notifier, sink, Options{
		OperatorChatID: operatorID,
		BusinessName:   "Invalid8th",
		PaymentNote:    "50% deposit secures your slot.",
		PaymentLink:    "https://pay.example/invalid8th",
	}, logging.NewWithWriter(io.Discard, "error"), nil)
	return m, store, notifier, sink
}

func pendingDraft(chatID int64) *booking.Booking {
	b := booking.New(chatID, time.Now())
	b.Name = "Great Ajereh"
	b.Handle = "@great"
	b.DateLabel = "24 Nov 2025"
	b.TimeLabel = "14:00"
	b.Location = "Shoreditch"
	b.Quantity = booking.Hours(3)
	b.Start = time.Date(2025, time.November, 24, 14, 0, 0, 0, time.Local)
	b.End = b.Start.Add(3 * time.Hour)
	b.BasePrice = 300
	b.Status = booking.StatusPendingPricing
	return b
}

func TestSetTravelFee(t *testing.T) {
	m, store, notifier, _ := newTestManager(t)
	store.UpsertDraft(pendingDraft(1))
	ctx := context.Background()

	got, err := m.SetTravelFee(ctx, operatorID, 1, 150)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusAwaitingPayment, got.Status)
	total, ok := got.Total()
	require.True(t, ok)
	assert.Equal(t, 450, total)

	// Requester got the final price and payment instructions.
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(1), notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].msg.Text, "£450")
	assert.NotEmpty(t, notifier.sent[0].msg.PNG, "payment QR expected when a link is configured")

	// Re-running silently overwrites the fee.
	got, err = m.SetTravelFee(ctx, operatorID, 1, 0)
	require.NoError(t, err)
	total, _ = got.Total()
	assert.Equal(t, 300, total, "zero is a valid fee")
}

func TestSetTravelFeeFailures(t *testing.T) {
	m, store, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.SetTravelFee(ctx, 123, 1, 50)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = m.SetTravelFee(ctx, operatorID, 1, 50)
	assert.ErrorIs(t, err, booking.ErrNoActiveBooking)

	_, err = m.SetTravelFee(ctx, operatorID, 1, -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// A mid-dialog booking is not a committed draft yet.
	store.UpsertDraft(booking.New(2, time.Now()))
	_, err = m.SetTravelFee(ctx, operatorID, 2, 50)
	assert.ErrorIs(t, err, booking.ErrNoActiveBooking)
}

func TestConfirmPaymentHappyPath(t *testing.T) {
	m, store, notifier, sink := newTestManager(t)
	store.UpsertDraft(pendingDraft(1))
	ctx := context.Background()

	_, err := m.SetTravelFee(ctx, operatorID, 1, 100)
	require.NoError(t, err)
	notifier.sent = nil

	got, err := m.ConfirmPayment(ctx, operatorID, 1)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, got.Status)

	// Draft moved to the finalized list.
	_, ok := store.Draft(1)
	assert.False(t, ok, "draft must be removed on confirmation")
	require.Len(t, store.Finalized(), 1)

	// Durable record appended.
	require.Len(t, sink.appended, 1)
	assert.Equal(t, booking.StatusConfirmed, sink.appended[0].Status)

	// Both parties notified with the calendar artifact.
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, int64(1), notifier.sent[0].chatID)
	assert.Equal(t, operatorID, notifier.sent[1].chatID)
	for _, s := range notifier.sent {
		require.NotNil(t, s.msg.Document)
		assert.Contains(t, string(s.msg.Document.Data), "BEGIN:VEVENT")
	}

	// Idempotence: the draft is gone, so a second confirm fails.
	_, err = m.ConfirmPayment(ctx, operatorID, 1)
	assert.ErrorIs(t, err, booking.ErrNoActiveBooking)
}

func TestConfirmPaymentPreconditions(t *testing.T) {
	m, store, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.ConfirmPayment(ctx, 123, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = m.ConfirmPayment(ctx, operatorID, 1)
	assert.ErrorIs(t, err, booking.ErrNoActiveBooking)

	// Fee not yet set: stays pending_pricing.
	store.UpsertDraft(pendingDraft(1))
	_, err = m.ConfirmPayment(ctx, operatorID, 1)
	assert.ErrorIs(t, err, ErrFeeNotSet)

	b, ok := store.Draft(1)
	require.True(t, ok, "failed confirmation must not consume the draft")
	assert.Equal(t, booking.StatusPendingPricing, b.Status)
}

func TestConfirmPaymentSurvivesDeliveryFailure(t *testing.T) {
	m, store, notifier, sink := newTestManager(t)
	store.UpsertDraft(pendingDraft(1))
	ctx := context.Background()

	_, err := m.SetTravelFee(ctx, operatorID, 1, 0)
	require.NoError(t, err)

	notifier.err = errors.New("telegram: 502")
	sink.err = errors.New("disk full")

	got, err := m.ConfirmPayment(ctx, operatorID, 1)
	require.NoError(t, err, "delivery failure must not roll back the transition")
	assert.Equal(t, booking.StatusConfirmed, got.Status)
	assert.Len(t, store.Finalized(), 1)
}

func TestRecordPaymentProof(t *testing.T) {
	m, store, notifier, _ := newTestManager(t)
	ctx := context.Background()

	// No booking at all.
	_, err := m.RecordPaymentProof(ctx, operatorID, 1, "file-123")
	assert.ErrorIs(t, err, ErrNoMatchingAwaitingPayment)

	// Booking exists but is not awaiting payment.
	store.UpsertDraft(pendingDraft(1))
	_, err = m.RecordPaymentProof(ctx, 1, 1, "file-123")
	assert.ErrorIs(t, err, ErrNoMatchingAwaitingPayment)

	_, err = m.SetTravelFee(ctx, operatorID, 1, 100)
	require.NoError(t, err)
	notifier.sent = nil

	// A third party may not submit proof for someone else's booking.
	_, err = m.RecordPaymentProof(ctx, 999, 1, "file-123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The requester submits their own proof.
	got, err := m.RecordPaymentProof(ctx, 1, 1, "file-123")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusAwaitingPayment, got.Status, "proof never changes status")

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, operatorID, notifier.sent[0].chatID)
	assert.Equal(t, "file-123", notifier.sent[0].msg.ForwardID)
	assert.Contains(t, notifier.sent[0].msg.Text, "£400")

	// Status still only changes via ConfirmPayment.
	b, _ := store.Draft(1)
	assert.Equal(t, booking.StatusAwaitingPayment, b.Status)
}
