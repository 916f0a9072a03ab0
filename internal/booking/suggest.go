package booking

import "time"

// SuggestSlots walks the business-hours window and proposes free slots of
// the requested duration, earliest first, capped at max. booked must be
// sorted ascending by start time and contain only active bookings (the
// repository guarantees both).
//
// The cursor starts at windowStart. Each gap before a booking is filled
// with back-to-back candidates while they fit, then the cursor jumps past
// the booking. One final candidate covers the gap after the last booking.
func SuggestSlots(booked []TimeRange, windowStart, windowEnd time.Time, duration time.Duration, max int) []TimeSlot {
	if duration <= 0 || max <= 0 {
		return nil
	}

	suggestions := make([]TimeSlot, 0, max)
	cursor := windowStart

	for _, b := range booked {
		for len(suggestions) < max && !cursor.Add(duration).After(b.Start) {
			suggestions = append(suggestions, TimeSlot{
				StartTime: cursor,
				EndTime:   cursor.Add(duration),
			})
			cursor = cursor.Add(duration)
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if len(suggestions) < max && !cursor.Add(duration).After(windowEnd) {
		suggestions = append(suggestions, TimeSlot{
			StartTime: cursor,
			EndTime:   cursor.Add(duration),
		})
	}

	return suggestions
}
