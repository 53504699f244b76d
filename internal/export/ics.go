package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/invalid8th/bookingbot/internal/booking"
)

// icsTimeLayout renders floating local time: no zone suffix, so the event
// lands at the written wall-clock time wherever the calendar is opened.
const icsTimeLayout = "20060102T150405"

// CalendarEvent builds an iCalendar document for a confirmed booking,
// delivered to both the requester and the operator. The UID is date-stamped
// and unique per booking.
func CalendarEvent(b booking.Booking, businessName string, now time.Time) (filename string, data []byte) {
	uid := fmt.Sprintf("%s-%s@%s", now.Format("20060102"), b.ID, strings.ToLower(businessName))
	summary := fmt.Sprintf("%s shoot: %s", b.Category().Label(), b.Name)

	desc := fmt.Sprintf("Booked by %s (%s)\nCategory: %s\nLocation: %s",
		b.Name, b.Handle, b.Category().Label(), b.Location)
	if total, ok := b.Total(); ok {
		desc += fmt.Sprintf("\nTotal price: £%d", total)
	}

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteString("\r\n")
	}
	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line(fmt.Sprintf("PRODID:-//%s//bookingbot//EN", businessName))
	line("BEGIN:VEVENT")
	line("UID:" + uid)
	line("DTSTAMP:" + now.UTC().Format(icsTimeLayout) + "Z")
	line("DTSTART:" + b.Start.Format(icsTimeLayout))
	line("DTEND:" + b.End.Format(icsTimeLayout))
	line("SUMMARY:" + escapeICS(summary))
	line("LOCATION:" + escapeICS(b.Location))
	line("DESCRIPTION:" + escapeICS(desc))
	line("END:VEVENT")
	line("END:VCALENDAR")

	filename = fmt.Sprintf("booking-%s.ics", b.Start.Format("2006-01-02"))
	return filename, []byte(sb.String())
}

// escapeICS escapes text per RFC 5545: backslash, comma, semicolon, and
// newlines.
func escapeICS(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		",", `\,`,
		";", `\;`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
