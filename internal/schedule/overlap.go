package schedule

import "slices"

// Overlaps reports whether two slots compete for the same room over
// intersecting time intervals. Intervals are half-open: a slot ending at
// 09:30 does not overlap one starting at 09:30. A slot never overlaps
// itself, matched by identical id, so that in-place edits validate cleanly.
func Overlaps(existing, candidate Slot) bool {
	if existing.ID == candidate.ID {
		return false
	}
	if !sharesRoom(existing, candidate) {
		return false
	}

	existingStart, existingEnd := existing.StartMinutes(), existing.EndMinutes()
	candidateStart, candidateEnd := candidate.StartMinutes(), candidate.EndMinutes()

	switch {
	case existingStart <= candidateStart && candidateStart < existingEnd:
		return true
	case existingStart < candidateEnd && candidateEnd <= existingEnd:
		return true
	case candidateStart <= existingStart && existingEnd <= candidateEnd:
		return true
	}
	return false
}

// sharesRoom reports whether two slots occupy the same physical space, either
// directly or through an overflow room declaration on either side.
func sharesRoom(a, b Slot) bool {
	if a.RoomID == b.RoomID {
		return true
	}
	if slices.Contains(a.OverflowRoomIDs, b.RoomID) {
		return true
	}
	return slices.Contains(b.OverflowRoomIDs, a.RoomID)
}
