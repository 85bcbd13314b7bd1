package schedule

import (
	"fmt"
	"slices"
	"time"
)

// Room represents a physical space owned by a conference. Rooms flagged as
// session rooms may host talks; the rest are reserved for breaks, catering
// and side activities.
type Room struct {
	ID            string
	Name          string
	Capacity      int
	IsSessionRoom bool
}

// SlotType is a global classification of slots. IsSession distinguishes talk
// slots from breaks, lunches and activities.
type SlotType struct {
	ID        string
	Label     string
	IsSession bool
}

// SessionType is a conference-owned talk format with a fixed duration in
// minutes. Every session slot references exactly one session type whose
// duration matches the slot's own.
type SessionType struct {
	ID          string
	Name        string
	Duration    int
	MaxSpeakers int
}

// Track groups sessions thematically. Tracks only influence allocator
// diversity scoring and display; they never affect eligibility.
type Track struct {
	ID    string
	Name  string
	Color string
}

// Slot is a bookable interval inside a day. StartTime and EndTime are HH:mm
// clock values within the day, Duration is minutes. OverflowRoomIDs lists
// rooms that share the same physical space for overlap purposes, such as a
// partition wall that can open between two rooms.
type Slot struct {
	ID              string
	StartTime       string
	EndTime         string
	Duration        int
	RoomID          string
	SlotTypeID      string
	SessionTypeID   string
	OverflowRoomIDs []string
}

// Day is one conference day: a date, opening hours and an ordered slot list.
// DisabledRoomIDs removes rooms from planning for this day only.
type Day struct {
	ID              string
	Date            time.Time
	Index           int
	BeginTime       string
	EndTime         string
	DisabledRoomIDs []string
	Slots           []Slot
}

// ClockMinutes parses an HH:mm clock value into minutes since midnight.
func ClockMinutes(clock string) (int, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("schedule: invalid clock value %q: %w", clock, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("schedule: clock value %q out of range", clock)
	}
	return hours*60 + minutes, nil
}

// MinutesClock formats minutes since midnight as an HH:mm clock value.
func MinutesClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// clockOrNegative parses a clock value, reporting -1 for malformed input so
// that the validator can treat unparseable times as ordering failures.
func clockOrNegative(clock string) int {
	m, err := ClockMinutes(clock)
	if err != nil {
		return -1
	}
	return m
}

// StartMinutes returns the slot start as minutes since midnight, -1 when the
// clock value is malformed.
func (s Slot) StartMinutes() int {
	return clockOrNegative(s.StartTime)
}

// EndMinutes returns the slot end as minutes since midnight, -1 when the
// clock value is malformed.
func (s Slot) EndMinutes() int {
	return clockOrNegative(s.EndTime)
}

// ComputedDuration returns the minute span between start and end times.
func (s Slot) ComputedDuration() int {
	return s.EndMinutes() - s.StartMinutes()
}

// BeginMinutes returns the day opening time as minutes since midnight.
func (d Day) BeginMinutes() int {
	return clockOrNegative(d.BeginTime)
}

// EndMinutes returns the day closing time as minutes since midnight.
func (d Day) EndMinutes() int {
	return clockOrNegative(d.EndTime)
}

// RoomDisabled reports whether the room is excluded from planning on this day.
func (d Day) RoomDisabled(roomID string) bool {
	return slices.Contains(d.DisabledRoomIDs, roomID)
}

// FindSlot returns the slot with the given id, if present.
func (d Day) FindSlot(slotID string) (Slot, bool) {
	for _, slot := range d.Slots {
		if slot.ID == slotID {
			return slot, true
		}
	}
	return Slot{}, false
}

// FindRoom returns the room with the given id, if present.
func FindRoom(rooms []Room, id string) (Room, bool) {
	for _, room := range rooms {
		if room.ID == id {
			return room, true
		}
	}
	return Room{}, false
}

// FindSlotType returns the slot type with the given id, if present.
func FindSlotType(slotTypes []SlotType, id string) (SlotType, bool) {
	for _, st := range slotTypes {
		if st.ID == id {
			return st, true
		}
	}
	return SlotType{}, false
}

// FindSessionType returns the session type with the given id, if present.
func FindSessionType(sessionTypes []SessionType, id string) (SessionType, bool) {
	for _, st := range sessionTypes {
		if st.ID == id {
			return st, true
		}
	}
	return SessionType{}, false
}
