package dialog

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/invalid8th/bookingbot/internal/booking"
	"github.com/invalid8th/bookingbot/internal/observability/metrics"
	"github.com/invalid8th/bookingbot/internal/pricing"
	"github.com/invalid8th/bookingbot/internal/schedule"
	"github.com/invalid8th/bookingbot/pkg/logging"
)

// ErrNoDialog is returned when input arrives for a requester with no
// dialog in progress.
var ErrNoDialog = errors.New("dialog: no dialog in progress")

// Completion is the outcome of a finished dialog: the committed draft at
// pending_pricing plus its advisory conflict classification.
type Completion struct {
	Booking  booking.Booking
	Conflict schedule.Conflict
}

// session holds the per-requester dialog position. The draft itself lives
// in the booking store; the session only keeps the cursor and the parsed
// date/time values the labels were derived from.
type session struct {
	mu       sync.Mutex
	step     Step
	date     time.Time
	clock    time.Duration
	category booking.Category
}

// Manager runs every requester's dialog. Steps for one requester are
// serialized on the session lock; different requesters advance
// concurrently.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*session

	store   *booking.Store
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

// NewManager creates a dialog manager over the booking store.
func NewManager(store *booking.Store, logger *logging.Logger, m *metrics.BookingMetrics) *Manager {
	if store == nil {
		panic("dialog: booking store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		sessions: make(map[int64]*session),
		store:    store,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Start begins (or restarts) a booking dialog. Any prior non-terminal
// booking for the requester is silently replaced; the replaced flag
// surfaces that as a draft_replaced event.
func (m *Manager) Start(chatID int64) (Reply, bool) {
	m.mu.Lock()
	sess := &session{step: StepName}
	m.sessions[chatID] = sess
	m.mu.Unlock()

	replaced := m.store.UpsertDraft(booking.New(chatID, m.now()))
	m.metrics.ObserveDialogStarted(replaced)
	m.logger.Info("dialog started", "chat_id", chatID, "draft_replaced", replaced)

	return Reply{Prompt: "Your full name?"}, replaced
}

// Active reports whether the requester has a dialog in progress.
func (m *Manager) Active(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[chatID]
	return ok
}

// Abandon discards the requester's dialog and draft without a trace.
func (m *Manager) Abandon(chatID int64) bool {
	m.mu.Lock()
	_, had := m.sessions[chatID]
	delete(m.sessions, chatID)
	m.mu.Unlock()

	removed := m.store.RemoveDraft(chatID)
	if had || removed {
		m.logger.Info("dialog abandoned", "chat_id", chatID)
	}
	return had || removed
}

// Handle advances the requester's dialog with one inbound event. Validation
// failures return a *ValidationError alongside a re-prompting reply and do
// not advance the step.
func (m *Manager) Handle(chatID int64, input Input) (Reply, error) {
	m.mu.Lock()
	sess, ok := m.sessions[chatID]
	m.mu.Unlock()
	if !ok {
		return Reply{}, ErrNoDialog
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	reply, err := m.advance(chatID, sess, input)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			m.metrics.ObserveStepRejection(verr.Step.String())
		}
	}
	return reply, err
}

func (m *Manager) advance(chatID int64, sess *session, input Input) (Reply, error) {
	text := strings.TrimSpace(input.Text)

	switch sess.step {
	case StepName:
		if text == "" {
			return m.reprompt(sess, "Please send your full name.")
		}
		if err := m.setField(chatID, func(b *booking.Booking) { b.Name = text }); err != nil {
			return Reply{}, err
		}
		sess.step = StepHandle
		return Reply{Prompt: "Your contact handle? (e.g., @username)"}, nil

	case StepHandle:
		if text == "" {
			return m.reprompt(sess, "Please send a contact handle or email.")
		}
		if err := m.setField(chatID, func(b *booking.Booking) { b.Handle = text }); err != nil {
			return Reply{}, err
		}
		sess.step = StepDate
		return Reply{Prompt: "Date? (e.g., 24 Nov 2025)"}, nil

	case StepDate:
		date, err := schedule.ParseDate(text)
		if err != nil {
			return m.reprompt(sess, "I couldn't read that date. Try a format like 24 Nov 2025 or 2025-11-24.")
		}
		if err := m.setField(chatID, func(b *booking.Booking) { b.DateLabel = text }); err != nil {
			return Reply{}, err
		}
		sess.date = date
		sess.step = StepTime
		return Reply{Prompt: "Start time? (24h, e.g., 14:00)"}, nil

	case StepTime:
		clock, err := schedule.ParseClock(text)
		if err != nil {
			return m.reprompt(sess, "I couldn't read that time. Use 24-hour HH:MM, e.g., 14:00.")
		}
		if err := m.setField(chatID, func(b *booking.Booking) { b.TimeLabel = text }); err != nil {
			return Reply{}, err
		}
		sess.clock = clock
		sess.step = StepLocation
		return Reply{Prompt: "Location? (area or exact address)"}, nil

	case StepLocation:
		if text == "" {
			return m.reprompt(sess, "Please send a location.")
		}
		if err := m.setField(chatID, func(b *booking.Booking) { b.Location = text }); err != nil {
			return Reply{}, err
		}
		sess.step = StepCategory
		return Reply{Prompt: "Choose a package:", AskCategory: true}, nil

	case StepCategory:
		var category booking.Category
		switch booking.Category(strings.ToLower(input.Selection)) {
		case booking.CategoryLifestyle:
			category = booking.CategoryLifestyle
		case booking.CategoryMatchday:
			category = booking.CategoryMatchday
		default:
			reply, err := m.reprompt(sess, "Please pick a package from the buttons.")
			reply.AskCategory = true
			return reply, err
		}
		sess.category = category
		sess.step = StepQuantity
		if category == booking.CategoryLifestyle {
			return Reply{Prompt: "How many hours? (minimum 1)"}, nil
		}
		return Reply{Prompt: "How many players?"}, nil

	case StepQuantity:
		units, err := strconv.Atoi(text)
		if err != nil || units < 1 {
			return m.reprompt(sess, "Please send a whole number of at least 1.")
		}
		return m.complete(chatID, sess, units)
	}

	return Reply{}, ErrNoDialog
}

// complete fills the remaining derived fields, commits the draft at
// pending_pricing, and classifies it against the rest of the diary.
func (m *Manager) complete(chatID int64, sess *session, units int) (Reply, error) {
	var quantity booking.Quantity
	if sess.category == booking.CategoryLifestyle {
		quantity = booking.Hours(units)
	} else {
		quantity = booking.Players(units)
	}
	start, end := schedule.Window(sess.date, sess.clock, quantity.Duration())

	committed, err := m.store.UpdateDraft(chatID, func(b *booking.Booking) error {
		b.Quantity = quantity
		b.BasePrice = pricing.Price(quantity)
		b.Start = start
		b.End = end
		b.Status = booking.StatusPendingPricing
		return nil
	})
	if err != nil {
		return Reply{}, err
	}

	candidate, _ := committed.Interval()
	conflict := schedule.Detect(candidate, m.store.SnapshotIntervals(chatID))
	if conflict.Warns() {
		kind := "close_gap"
		if conflict.Overlaps {
			kind = "overlap"
		}
		m.metrics.ObserveConflict(kind)
		m.logger.Warn("booking conflict detected",
			"chat_id", chatID, "kind", kind, "start", committed.Start, "end", committed.End)
	}
	annotated, err := m.store.UpdateDraft(chatID, func(b *booking.Booking) error {
		b.Conflict = &conflict
		return nil
	})
	if err != nil {
		// The draft vanished between the two updates (requester restarted
		// from another device); report the committed copy as-is.
		annotated = committed
	}

	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()

	sess.step = StepDone
	m.logger.Info("dialog completed",
		"chat_id", chatID,
		"category", string(annotated.Category()),
		"base_price", annotated.BasePrice,
		"conflict", conflict.Warns())

	return Reply{Completed: &Completion{Booking: annotated, Conflict: conflict}}, nil
}

func (m *Manager) setField(chatID int64, set func(*booking.Booking)) error {
	_, err := m.store.UpdateDraft(chatID, func(b *booking.Booking) error {
		set(b)
		return nil
	})
	return err
}

func (m *Manager) reprompt(sess *session, reason string) (Reply, error) {
	return Reply{Prompt: reason, Invalid: true},
		&ValidationError{Step: sess.step, Reason: reason}
}
