package schedule

import "errors"

// Template describes a repeating slot pattern to expand across rooms and a
// time range: back-to-back slots of a fixed duration, optionally separated by
// a gap, between From and Until.
type Template struct {
	RoomIDs         []string
	SlotTypeID      string
	SessionTypeID   string
	Duration        int
	Gap             int
	From            string
	Until           string
	OverflowRoomIDs []string
}

// ErrInvalidTemplateDuration indicates the template duration is not positive.
var ErrInvalidTemplateDuration = errors.New("schedule: template duration must be positive")

// ErrInvalidTemplateWindow indicates the template window is empty or reversed.
var ErrInvalidTemplateWindow = errors.New("schedule: template window requires From before Until")

// ErrNoTemplateRooms indicates the template names no rooms.
var ErrNoTemplateRooms = errors.New("schedule: template requires at least one room")

// Generator expands slot templates into candidate slots. Identifiers are
// produced by the injected newID function so callers control id generation.
type Generator struct {
	newID func() string
}

// NewGenerator constructs a Generator. When newID is nil, generated slots
// carry empty identifiers.
func NewGenerator(newID func() string) *Generator {
	if newID == nil {
		newID = func() string { return "" }
	}
	return &Generator{newID: newID}
}

// Expand produces candidate slots for the template, room by room in the
// template's room order, stepping through the window in Duration+Gap
// increments. A slot is emitted only when it fits entirely inside the window.
//
// Expansion performs no validation against a day; callers run the result
// through FilterCompatible to obtain the acceptable subset.
func (g *Generator) Expand(template Template) ([]Slot, error) {
	if template.Duration <= 0 {
		return nil, ErrInvalidTemplateDuration
	}
	if len(template.RoomIDs) == 0 {
		return nil, ErrNoTemplateRooms
	}
	gap := template.Gap
	if gap < 0 {
		gap = 0
	}

	from, err := ClockMinutes(template.From)
	if err != nil {
		return nil, ErrInvalidTemplateWindow
	}
	until, err := ClockMinutes(template.Until)
	if err != nil {
		return nil, ErrInvalidTemplateWindow
	}
	if until <= from {
		return nil, ErrInvalidTemplateWindow
	}

	var slots []Slot
	for _, roomID := range template.RoomIDs {
		for start := from; start+template.Duration <= until; start += template.Duration + gap {
			end := start + template.Duration
			slots = append(slots, Slot{
				ID:              g.newID(),
				StartTime:       MinutesClock(start),
				EndTime:         MinutesClock(end),
				Duration:        template.Duration,
				RoomID:          roomID,
				SlotTypeID:      template.SlotTypeID,
				SessionTypeID:   template.SessionTypeID,
				OverflowRoomIDs: template.OverflowRoomIDs,
			})
		}
	}
	return slots, nil
}
