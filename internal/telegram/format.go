package telegram

import (
	"fmt"
	"strings"

	"github.com/invalid8th/bookingbot/internal/booking"
	"github.com/invalid8th/bookingbot/internal/schedule"
)

const welcomeText = `Welcome to the Invalid8th assistant.

- Shoot bookings
- Membership info
- FAQs

Tap a button to begin, or send /book.`

const helpText = `/start - menu
/book - book a shoot
/cancel - abandon your booking
/membership - membership info
/faqs - FAQs
/help - this message`

const membershipText = `Invalid8th Lifestyle Membership
- Basic (£100/mo): priority bookings, 10% off.
- Premium (£500/mo): quarterly styled shoot, concierge, 20% off.
- Elite (£1,000-1,500/mo): concierge, private dinners, free monthly shoot.
DM @invalid8th to upgrade.`

const faqsText = `FAQs
- Shoots: London & nationwide
- Turnaround: 48-72h
- Payment: 50% deposit
- Contact: @invalid8th`

func quantityLine(b booking.Booking) string {
	if b.Quantity == nil {
		return ""
	}
	unit := "hours"
	if b.Category() == booking.CategoryMatchday {
		unit = "players"
	}
	return fmt.Sprintf("%s, %d %s", b.Category().Label(), b.Quantity.Units(), unit)
}

// requesterSummary confirms a completed dialog back to the requester.
func requesterSummary(b booking.Booking) string {
	var sb strings.Builder
	sb.WriteString("Booking request received:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "- Date: %s at %s\n", b.DateLabel, b.TimeLabel)
	fmt.Fprintf(&sb, "- Location: %s\n", b.Location)
	fmt.Fprintf(&sb, "- Package: %s\n", quantityLine(b))
	fmt.Fprintf(&sb, "- Base price: £%d\n", b.BasePrice)
	sb.WriteString("\nWe'll confirm your final price (including any travel fee) shortly.")
	return sb.String()
}

// operatorSummary announces a new committed draft to the operator.
func operatorSummary(b booking.Booking) string {
	var sb strings.Builder
	sb.WriteString("New booking request:\n")
	fmt.Fprintf(&sb, "- Name: %s (%s)\n", b.Name, b.Handle)
	fmt.Fprintf(&sb, "- Date: %s at %s\n", b.DateLabel, b.TimeLabel)
	fmt.Fprintf(&sb, "- Location: %s\n", b.Location)
	fmt.Fprintf(&sb, "- Package: %s\n", quantityLine(b))
	fmt.Fprintf(&sb, "- Base price: £%d\n", b.BasePrice)
	fmt.Fprintf(&sb, "\nSet the travel fee with /fee %d <amount>.", b.ChatID)
	return sb.String()
}

// conflictWarning renders the advisory classification, or "" when there is
// nothing to flag.
func conflictWarning(c schedule.Conflict) string {
	if !c.Warns() || c.Nearest == nil {
		return ""
	}
	window := fmt.Sprintf("%s to %s",
		c.Nearest.Start.Format("Mon 2 Jan 15:04"),
		c.Nearest.End.Format("15:04"))
	if c.Overlaps {
		return fmt.Sprintf("Heads up: this slot overlaps another booking (%s).", window)
	}
	return fmt.Sprintf("Heads up: another booking runs %s, only %s away.", window, c.Gap)
}
