package schedule

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidDate means none of the accepted date formats matched.
	ErrInvalidDate = errors.New("schedule: unrecognised date")
	// ErrInvalidTime means the input was not a 24-hour HH:MM clock time.
	ErrInvalidTime = errors.New("schedule: unrecognised time")
)

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
}

// ParseDate parses a calendar date in any of the accepted literal formats
// (day-month-year with abbreviated or full month name, slash-, dash-, or
// ISO-separated numeric forms).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseClock parses a 24-hour HH:MM clock time and returns it as an offset
// from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidTime
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Window combines a parsed date with a clock offset and a duration into the
// half-open interval [start, start+d).
func Window(date time.Time, clock time.Duration, d time.Duration) (start, end time.Time) {
	start = date.Add(clock)
	return start, start.Add(d)
}
