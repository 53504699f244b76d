// Package export produces the collaborator-facing artifacts of a finalized
// booking: the durable CSV record, the calendar-event document, and the
// operator's spreadsheet report.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/invalid8th/bookingbot/internal/booking"
)

// csvHeader is written once when the file is created.
var csvHeader = []string{
	"confirmed_at", "booking_id", "chat_id", "name", "handle",
	"date_label", "time_label", "location", "category", "units",
	"start", "end", "base_price", "travel_fee", "total",
}

// CSVAppender is the durable append sink: one flattened line per finalized
// booking, append-only, never rewritten.
type CSVAppender struct {
	mu   sync.Mutex
	path string
}

// NewCSVAppender creates an appender writing to path. Parent directories are
// created on first append.
func NewCSVAppender(path string) *CSVAppender {
	return &CSVAppender{path: path}
}

// Append writes one finalized booking. confirmedAt stamps the record.
func (a *CSVAppender) Append(b booking.Booking, confirmedAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("export: create data dir: %w", err)
	}

	// An existing zero-byte file (pre-created, or a crash before the
	// header landed) still needs the header.
	info, statErr := os.Stat(a.path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("export: open bookings file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("export: write header: %w", err)
		}
	}
	if err := w.Write(flatten(b, confirmedAt)); err != nil {
		return fmt.Errorf("export: write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: flush record: %w", err)
	}
	return nil
}

func flatten(b booking.Booking, confirmedAt time.Time) []string {
	fee := ""
	total := ""
	if b.TravelFee != nil {
		fee = strconv.Itoa(*b.TravelFee)
		total = strconv.Itoa(b.BasePrice + *b.TravelFee)
	}
	units := ""
	category := ""
	if b.Quantity != nil {
		units = strconv.Itoa(b.Quantity.Units())
		category = string(b.Quantity.Category())
	}
	return []string{
		confirmedAt.UTC().Format(time.RFC3339),
		b.ID.String(),
		strconv.FormatInt(b.ChatID, 10),
		b.Name,
		b.Handle,
		b.DateLabel,
		b.TimeLabel,
		b.Location,
		category,
		units,
		b.Start.Format(time.RFC3339),
		b.End.Format(time.RFC3339),
		strconv.Itoa(b.BasePrice),
		fee,
		total,
	}
}
