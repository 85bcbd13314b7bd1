package schedule

import "slices"

// ErrorCode identifies one structural problem found while validating a slot.
// Validation results are data, never Go errors: callers decide whether a
// given code blocks a save.
type ErrorCode string

const (
	// ErrCodeStartAfterEnd indicates the slot ends at or before its start.
	ErrCodeStartAfterEnd ErrorCode = "START_AFTER_END"
	// ErrCodeWrongDuration indicates the declared duration is out of range or
	// inconsistent with the start and end times.
	ErrCodeWrongDuration ErrorCode = "WRONG_DURATION"
	// ErrCodeBeforeDayBegin indicates the slot starts before the day opens.
	ErrCodeBeforeDayBegin ErrorCode = "BEFORE_DAY_BEGIN"
	// ErrCodeAfterDayEnd indicates the slot ends after the day closes.
	ErrCodeAfterDayEnd ErrorCode = "AFTER_DAY_END"
	// ErrCodeUnexistingRoom indicates the room id resolves to no known room.
	ErrCodeUnexistingRoom ErrorCode = "UNEXISTING_ROOM"
	// ErrCodeRoomDisabled indicates the room is disabled for this day.
	ErrCodeRoomDisabled ErrorCode = "ROOM_DISABLED"
	// ErrCodeWrongSlotType indicates the slot type id resolves to no known type.
	ErrCodeWrongSlotType ErrorCode = "WRONG_SLOT_TYPE"
	// ErrCodeWrongRoomType indicates a session slot placed in a non-session
	// room, or the reverse.
	ErrCodeWrongRoomType ErrorCode = "WRONG_ROOM_TYPE"
	// ErrCodeWrongSessionType indicates the session type id resolves to no
	// known session type.
	ErrCodeWrongSessionType ErrorCode = "WRONG_SESSION_TYPE"
	// ErrCodeWrongDurationSession indicates the slot duration differs from the
	// referenced session type's fixed duration.
	ErrCodeWrongDurationSession ErrorCode = "WRONG_DURATION_SESSION"
	// ErrCodeOverlapSlot indicates the slot collides with another slot in the
	// same room or an overflow room.
	ErrCodeOverlapSlot ErrorCode = "OVERLAP_SLOT"
)

// maxSlotDuration bounds the accepted slot length in minutes.
const maxSlotDuration = 1000

// Validate checks a candidate slot against a day and the reference data it
// depends on. It returns the empty list iff the candidate may coexist with
// the day's current slots. The candidate is matched by id against existing
// slots so in-place edits do not collide with their own prior version.
//
// Every check runs; codes are de-duplicated but never short-circuited.
func Validate(candidate Slot, day Day, slotTypes []SlotType, sessionTypes []SessionType, rooms []Room) []ErrorCode {
	var codes []ErrorCode
	report := func(code ErrorCode) {
		if !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}

	start, end := candidate.StartMinutes(), candidate.EndMinutes()

	if start < 0 || end < 0 || end <= start {
		report(ErrCodeStartAfterEnd)
	}

	if candidate.Duration < 0 || candidate.Duration > maxSlotDuration {
		report(ErrCodeWrongDuration)
	}

	if start < day.BeginMinutes() {
		report(ErrCodeBeforeDayBegin)
	}
	if end > day.EndMinutes() {
		report(ErrCodeAfterDayEnd)
	}

	room, roomKnown := FindRoom(rooms, candidate.RoomID)
	if !roomKnown {
		report(ErrCodeUnexistingRoom)
	} else if day.RoomDisabled(candidate.RoomID) {
		report(ErrCodeRoomDisabled)
	}

	slotType, slotTypeKnown := FindSlotType(slotTypes, candidate.SlotTypeID)
	if !slotTypeKnown {
		report(ErrCodeWrongSlotType)
	} else {
		if roomKnown && room.IsSessionRoom != slotType.IsSession {
			report(ErrCodeWrongRoomType)
		}
		if slotType.IsSession {
			sessionType, sessionTypeKnown := FindSessionType(sessionTypes, candidate.SessionTypeID)
			if !sessionTypeKnown {
				report(ErrCodeWrongSessionType)
			} else if sessionType.Duration != candidate.Duration {
				report(ErrCodeWrongDurationSession)
			}
		}
	}

	for _, existing := range day.Slots {
		if Overlaps(existing, candidate) {
			report(ErrCodeOverlapSlot)
		}
	}

	if end-start != candidate.Duration {
		report(ErrCodeWrongDuration)
	}

	return codes
}
