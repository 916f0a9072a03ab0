package booking

import "time"

// TimeRange is a half-open interval [Start, End). The end instant is
// excluded so back-to-back bookings never count as overlapping.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect:
// [a, b) overlaps [c, d) iff a < d && c < b. This is the single
// definition of overlap in the system; the database exclusion
// constraint mirrors it exactly via tstzrange's default [) bounds.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Duration returns the length of the interval.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// IsValid reports whether the interval has positive length.
func (r TimeRange) IsValid() bool {
	return r.End.After(r.Start)
}

// TimeSlot is a suggested free interval, rendered as HH:MM at the HTTP layer.
type TimeSlot struct {
	StartTime time.Time
	EndTime   time.Time
}
