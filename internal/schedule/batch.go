package schedule

import "slices"

// FilterCompatible accepts, in input order, the candidates that validate
// against a working copy of the target day. Each accepted candidate is added
// to the working copy before the next is considered, so later candidates are
// checked against earlier accepted ones. Rejected candidates are dropped
// silently: on conflicts the policy is first-candidate-wins.
//
// Day-to-day copies, room-to-room copies and bulk slot creation all funnel
// through this filter, which guarantees the accepted subset is internally
// consistent and valid against the target day.
func FilterCompatible(candidates []Slot, day Day, slotTypes []SlotType, sessionTypes []SessionType, rooms []Room) []Slot {
	working := day
	working.Slots = slices.Clone(day.Slots)

	var accepted []Slot
	for _, candidate := range candidates {
		if len(Validate(candidate, working, slotTypes, sessionTypes, rooms)) > 0 {
			continue
		}
		accepted = append(accepted, candidate)
		working.Slots = append(working.Slots, candidate)
	}
	return accepted
}
