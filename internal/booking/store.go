package booking

import (
	"sync"

	"github.com/invalid8th/bookingbot/internal/schedule"
	"github.com/invalid8th/bookingbot/pkg/logging"
)

// Store holds every requester's single non-terminal draft plus the
// append-only list of confirmed bookings. One mutex guards both containers;
// callers never see the locking. The finalized list is the authoritative
// conflict-check universe; nothing in it is ever updated or deleted.
type Store struct {
	mu        sync.Mutex
	drafts    map[int64]*Booking
	finalized []*Booking
	logger    *logging.Logger
}

// NewStore creates an empty store.
func NewStore(logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		drafts: make(map[int64]*Booking),
		logger: logger,
	}
}

// UpsertDraft installs the requester's draft, replacing any previous
// non-terminal booking. The replaced flag lets callers surface the silent
// overwrite as a draft_replaced event.
func (s *Store) UpsertDraft(b *Booking) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced = s.drafts[b.ChatID]
	s.drafts[b.ChatID] = b
	if replaced {
		s.logger.Info("draft replaced", "chat_id", b.ChatID)
	}
	return replaced
}

// Draft returns a copy of the requester's draft.
func (s *Store) Draft(chatID int64) (Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.drafts[chatID]
	if !ok {
		return Booking{}, false
	}
	return *b, true
}

// UpdateDraft runs fn against the requester's draft under the store lock and
// returns the updated copy. fn returning an error leaves the draft untouched
// only if fn itself did not mutate it; callers validate before mutating.
func (s *Store) UpdateDraft(chatID int64, fn func(*Booking) error) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.drafts[chatID]
	if !ok {
		return Booking{}, ErrNoActiveBooking
	}
	if err := fn(b); err != nil {
		return Booking{}, err
	}
	return *b, nil
}

// RemoveDraft discards the requester's draft without a trace.
func (s *Store) RemoveDraft(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[chatID]; !ok {
		return false
	}
	delete(s.drafts, chatID)
	return true
}

// Finalize atomically promotes the requester's draft to confirmed: guard
// runs under the lock, then the booking moves from the drafts map to the
// finalized list. A second call for the same requester fails with
// ErrNoActiveBooking because the draft is gone.
func (s *Store) Finalize(chatID int64, guard func(*Booking) error) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.drafts[chatID]
	if !ok {
		return Booking{}, ErrNoActiveBooking
	}
	if guard != nil {
		if err := guard(b); err != nil {
			return Booking{}, err
		}
	}
	b.Status = StatusConfirmed
	delete(s.drafts, chatID)
	s.finalized = append(s.finalized, b)
	return *b, nil
}

// AppendFinal adds an already-confirmed booking to the finalized list.
// Exposed for seeding the conflict universe at startup.
func (s *Store) AppendFinal(b *Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = append(s.finalized, b)
}

// Finalized returns a copy of the confirmed bookings in insertion order.
func (s *Store) Finalized() []Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Booking, 0, len(s.finalized))
	for _, b := range s.finalized {
		out = append(out, *b)
	}
	return out
}

// SnapshotIntervals returns the intervals of every finalized booking plus
// every other requester's draft that has a derived interval. excludeChat
// keeps the candidate's own draft out of its conflict check.
func (s *Store) SnapshotIntervals(excludeChat int64) []schedule.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []schedule.Interval
	for _, b := range s.finalized {
		if ivl, ok := b.Interval(); ok {
			out = append(out, ivl)
		}
	}
	for chatID, b := range s.drafts {
		if chatID == excludeChat {
			continue
		}
		if ivl, ok := b.Interval(); ok {
			out = append(out, ivl)
		}
	}
	return out
}
