package schedule

import "time"

// CloseGapWindow is the spacing below which two back-to-back bookings are
// flagged as a close gap.
const CloseGapWindow = 3 * time.Hour

// Interval is one booking's half-open time span [Start, End).
type Interval struct {
	Start  time.Time
	End    time.Time
	ChatID int64
	Ref    string
}

// Overlaps reports standard half-open interval intersection.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// GapTo returns the spacing between two non-overlapping intervals: the
// difference between the earlier interval's end and the later one's start.
func (iv Interval) GapTo(other Interval) time.Duration {
	if !other.End.After(iv.Start) {
		return iv.Start.Sub(other.End)
	}
	return other.Start.Sub(iv.End)
}

// Conflict classifies a candidate interval against the rest of the diary.
// Overlaps and CloseGap are mutually exclusive; an overlapping interval is
// never also reported as a close gap. The classification is advisory and
// never blocks a booking.
type Conflict struct {
	Overlaps bool
	CloseGap bool

	// Nearest is the interval realizing the overlap or the minimum gap;
	// nil when there was nothing to compare against.
	Nearest *Interval

	// Gap is the spacing to Nearest when the intervals do not overlap.
	Gap time.Duration
}

// Warns reports whether the classification carries anything worth surfacing.
func (c Conflict) Warns() bool {
	return c.Overlaps || c.CloseGap
}

// Detect compares candidate against every other interval. Among overlapping
// matches the one with the earliest start wins; among non-overlapping ones
// the first encountered minimal gap wins.
func Detect(candidate Interval, others []Interval) Conflict {
	var result Conflict

	var minGap time.Duration
	for i := range others {
		other := others[i]
		if candidate.Overlaps(other) {
			if !result.Overlaps || other.Start.Before(result.Nearest.Start) {
				result.Overlaps = true
				result.Nearest = &others[i]
			}
			continue
		}
		if result.Overlaps {
			continue
		}
		gap := candidate.GapTo(other)
		if result.Nearest == nil || gap < minGap {
			minGap = gap
			result.Nearest = &others[i]
		}
	}

	if result.Overlaps {
		result.Gap = 0
		return result
	}
	if result.Nearest != nil {
		result.Gap = minGap
		result.CloseGap = minGap < CloseGapWindow
	}
	return result
}
