package allocation

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/example/conference-planner/internal/schedule"
)

// Session is the allocator's view of a submitted talk: identifiers, speakers
// and the per-conference submission attributes that drive placement.
type Session struct {
	ID            string
	Title         string
	SpeakerIDs    []string
	Status        Status
	SessionTypeID string
	TrackID       string
	ReviewAverage float64
}

// Allocation is a committed assignment of one session to one
// (day, slot, room) triple.
type Allocation struct {
	ID        string
	DayID     string
	SlotID    string
	RoomID    string
	SessionID string
}

// Speaker carries the conference-wide availability of one person.
// Unavailability is expressed in slot identity, not time ranges: a listed
// slot id is blacklisted for this person regardless of room.
type Speaker struct {
	ID                 string
	DisplayName        string
	UnavailableSlotIDs []string
	SessionIDs         []string
}

// Suggestion is one proposed assignment emitted by Suggest. Suggestions are
// advisory: the caller applies them through the allocation store, which
// re-validates against live data.
type Suggestion struct {
	DayID     string
	SlotID    string
	RoomID    string
	SessionID string
}

// Snapshot is the in-memory state Suggest operates on. The allocator performs
// no I/O: callers load the snapshot up front and re-invoke after any change.
type Snapshot struct {
	Days        []schedule.Day
	Rooms       []schedule.Room
	SlotTypes   []schedule.SlotType
	Sessions    []Session
	Allocations []Allocation
	Speakers    []Speaker
}

// freeSlot pairs a schedulable slot with its day and room context.
type freeSlot struct {
	day  schedule.Day
	slot schedule.Slot
	room schedule.Room
}

// score orders candidates for one slot. Fields are compared lexicographically
// in declaration order; each is a tie-break for the previous one.
type score struct {
	constrainedSpeaker bool
	clustersSpeakerDay bool
	addsTrackDiversity bool
	reviewAverage      float64
	random             float64
}

func (s score) beats(other score) bool {
	if s.constrainedSpeaker != other.constrainedSpeaker {
		return s.constrainedSpeaker
	}
	if s.clustersSpeakerDay != other.clustersSpeakerDay {
		return s.clustersSpeakerDay
	}
	if s.addsTrackDiversity != other.addsTrackDiversity {
		return s.addsTrackDiversity
	}
	if s.reviewAverage != other.reviewAverage {
		return s.reviewAverage > other.reviewAverage
	}
	return s.random > other.random
}

// Suggest computes a maximal greedy matching of unallocated eligible sessions
// onto free session slots in a single pass. It never revisits a slot and
// never reconsiders a decision; the result is fast and reproducible, not
// globally optimal. The rng feeds the final tie-break only and must be
// injectable so results are reproducible in tests; when nil, a default
// source is used.
func Suggest(snapshot Snapshot, rng func() float64) []Suggestion {
	if rng == nil {
		rng = rand.Float64
	}

	slotTypes := make(map[string]schedule.SlotType, len(snapshot.SlotTypes))
	for _, st := range snapshot.SlotTypes {
		slotTypes[st.ID] = st
	}
	rooms := make(map[string]schedule.Room, len(snapshot.Rooms))
	for _, room := range snapshot.Rooms {
		rooms[room.ID] = room
	}
	sessions := make(map[string]Session, len(snapshot.Sessions))
	for _, sess := range snapshot.Sessions {
		sessions[sess.ID] = sess
	}

	unavailable := make(map[string]map[string]bool, len(snapshot.Speakers))
	for _, speaker := range snapshot.Speakers {
		if len(speaker.UnavailableSlotIDs) == 0 {
			continue
		}
		set := make(map[string]bool, len(speaker.UnavailableSlotIDs))
		for _, slotID := range speaker.UnavailableSlotIDs {
			set[slotID] = true
		}
		unavailable[speaker.ID] = set
	}

	allocatedSessions := make(map[string]bool, len(snapshot.Allocations))
	occupied := make(map[string]bool, len(snapshot.Allocations))
	for _, alloc := range snapshot.Allocations {
		allocatedSessions[alloc.SessionID] = true
		occupied[tripleKey(alloc.DayID, alloc.SlotID, alloc.RoomID)] = true
	}

	pool := make(map[string]bool, len(snapshot.Sessions))
	for _, sess := range snapshot.Sessions {
		if sess.Status.Eligible() && !allocatedSessions[sess.ID] {
			pool[sess.ID] = true
		}
	}

	free := collectFreeSlots(snapshot.Days, rooms, slotTypes, occupied)

	// Running state seeded from existing allocations: which days each speaker
	// already appears on, and which tracks cover each day+time slice.
	speakerDays := make(map[string]map[string]bool)
	trackCover := make(map[string]map[string]bool)
	for _, alloc := range snapshot.Allocations {
		sess, ok := sessions[alloc.SessionID]
		if !ok {
			continue
		}
		for _, speakerID := range sess.SpeakerIDs {
			markSpeakerDay(speakerDays, speakerID, alloc.DayID)
		}
		if slot, day, ok := findAllocatedSlot(snapshot.Days, alloc); ok {
			markTrack(trackCover, timeSliceKey(day.ID, slot), sess.TrackID)
		}
	}

	var suggestions []Suggestion
	for _, fs := range free {
		if len(pool) == 0 {
			break
		}

		// Hard constraints: matching session type, no speaker blacklisted for
		// this literal slot.
		var candidates []Session
		for _, sess := range snapshot.Sessions {
			if !pool[sess.ID] {
				continue
			}
			if sess.SessionTypeID != fs.slot.SessionTypeID {
				continue
			}
			if anySpeakerUnavailable(sess, fs.slot.ID, unavailable) {
				continue
			}
			candidates = append(candidates, sess)
		}
		if len(candidates) == 0 {
			continue
		}

		// Soft constraint: prefer sessions whose speakers are not yet booked
		// on this day, falling back to the full candidate set.
		fresh := candidates[:0:0]
		for _, sess := range candidates {
			if !anySpeakerOnDay(sess, fs.day.ID, speakerDays) {
				fresh = append(fresh, sess)
			}
		}
		if len(fresh) > 0 {
			candidates = fresh
		}

		sliceKey := timeSliceKey(fs.day.ID, fs.slot)
		best := candidates[0]
		bestScore := scoreCandidate(best, fs.day.ID, sliceKey, unavailable, speakerDays, trackCover, rng)
		for _, sess := range candidates[1:] {
			s := scoreCandidate(sess, fs.day.ID, sliceKey, unavailable, speakerDays, trackCover, rng)
			if s.beats(bestScore) {
				best, bestScore = sess, s
			}
		}

		suggestions = append(suggestions, Suggestion{
			DayID:     fs.day.ID,
			SlotID:    fs.slot.ID,
			RoomID:    fs.slot.RoomID,
			SessionID: best.ID,
		})
		delete(pool, best.ID)
		for _, speakerID := range best.SpeakerIDs {
			markSpeakerDay(speakerDays, speakerID, fs.day.ID)
		}
		markTrack(trackCover, sliceKey, best.TrackID)
	}

	return suggestions
}

// collectFreeSlots gathers every unoccupied session slot whose room is a
// session room enabled for its day. Slots with unknown rooms or slot types
// are excluded rather than reported: a poorly specified slot is unusable,
// not fatal. The result is ordered by day (date, then declared index), slot
// start, slot end, and descending room capacity so bigger rooms are offered
// first within a tied time.
func collectFreeSlots(days []schedule.Day, rooms map[string]schedule.Room, slotTypes map[string]schedule.SlotType, occupied map[string]bool) []freeSlot {
	var free []freeSlot
	for _, day := range days {
		for _, slot := range day.Slots {
			slotType, ok := slotTypes[slot.SlotTypeID]
			if !ok || !slotType.IsSession {
				continue
			}
			room, ok := rooms[slot.RoomID]
			if !ok || !room.IsSessionRoom {
				continue
			}
			if day.RoomDisabled(slot.RoomID) {
				continue
			}
			if occupied[tripleKey(day.ID, slot.ID, slot.RoomID)] {
				continue
			}
			free = append(free, freeSlot{day: day, slot: slot, room: room})
		}
	}

	sort.SliceStable(free, func(i, j int) bool {
		a, b := free[i], free[j]
		if !a.day.Date.Equal(b.day.Date) {
			return a.day.Date.Before(b.day.Date)
		}
		if a.day.Index != b.day.Index {
			return a.day.Index < b.day.Index
		}
		if a.slot.StartMinutes() != b.slot.StartMinutes() {
			return a.slot.StartMinutes() < b.slot.StartMinutes()
		}
		if a.slot.EndMinutes() != b.slot.EndMinutes() {
			return a.slot.EndMinutes() < b.slot.EndMinutes()
		}
		return a.room.Capacity > b.room.Capacity
	})
	return free
}

func scoreCandidate(sess Session, dayID, sliceKey string, unavailable map[string]map[string]bool, speakerDays map[string]map[string]bool, trackCover map[string]map[string]bool, rng func() float64) score {
	s := score{
		reviewAverage: sess.ReviewAverage,
		random:        rng(),
	}
	for _, speakerID := range sess.SpeakerIDs {
		if len(unavailable[speakerID]) > 0 {
			s.constrainedSpeaker = true
		}
		if speakerDays[speakerID][dayID] {
			s.clustersSpeakerDay = true
		}
	}
	if sess.TrackID != "" && !trackCover[sliceKey][sess.TrackID] {
		s.addsTrackDiversity = true
	}
	return s
}

func anySpeakerUnavailable(sess Session, slotID string, unavailable map[string]map[string]bool) bool {
	for _, speakerID := range sess.SpeakerIDs {
		if unavailable[speakerID][slotID] {
			return true
		}
	}
	return false
}

func anySpeakerOnDay(sess Session, dayID string, speakerDays map[string]map[string]bool) bool {
	for _, speakerID := range sess.SpeakerIDs {
		if speakerDays[speakerID][dayID] {
			return true
		}
	}
	return false
}

func markSpeakerDay(speakerDays map[string]map[string]bool, speakerID, dayID string) {
	days, ok := speakerDays[speakerID]
	if !ok {
		days = make(map[string]bool)
		speakerDays[speakerID] = days
	}
	days[dayID] = true
}

func markTrack(trackCover map[string]map[string]bool, sliceKey, trackID string) {
	if trackID == "" {
		return
	}
	tracks, ok := trackCover[sliceKey]
	if !ok {
		tracks = make(map[string]bool)
		trackCover[sliceKey] = tracks
	}
	tracks[trackID] = true
}

func findAllocatedSlot(days []schedule.Day, alloc Allocation) (schedule.Slot, schedule.Day, bool) {
	for _, day := range days {
		if day.ID != alloc.DayID {
			continue
		}
		if slot, ok := day.FindSlot(alloc.SlotID); ok {
			return slot, day, true
		}
	}
	return schedule.Slot{}, schedule.Day{}, false
}

// timeSliceKey identifies one day+time combination across rooms for track
// diversity bookkeeping.
func timeSliceKey(dayID string, slot schedule.Slot) string {
	return strings.Join([]string{dayID, slot.StartTime, slot.EndTime}, "::")
}

func tripleKey(dayID, slotID, roomID string) string {
	return strings.Join([]string{dayID, slotID, roomID}, "::")
}
