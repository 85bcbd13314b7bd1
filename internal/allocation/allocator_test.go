package allocation

import (
	"testing"
	"time"

	"github.com/example/conference-planner/internal/schedule"
)

func constantRng() float64 { return 0.5 }

func sequenceRng(values ...float64) func() float64 {
	index := 0
	return func() float64 {
		v := values[index%len(values)]
		index++
		return v
	}
}

func sessionSlot(id, roomID, start, end string) schedule.Slot {
	return schedule.Slot{
		ID:            id,
		StartTime:     start,
		EndTime:       end,
		Duration:      40,
		RoomID:        roomID,
		SlotTypeID:    "st-session",
		SessionTypeID: "talk-40",
	}
}

func snapshotDay(id string, date time.Time, index int, slots ...schedule.Slot) schedule.Day {
	return schedule.Day{
		ID:        id,
		Date:      date,
		Index:     index,
		BeginTime: "09:00",
		EndTime:   "18:00",
		Slots:     slots,
	}
}

func baseSnapshot(days []schedule.Day, sessions ...Session) Snapshot {
	return Snapshot{
		Days: days,
		Rooms: []schedule.Room{
			{ID: "room-a", Name: "Main", Capacity: 300, IsSessionRoom: true},
			{ID: "room-b", Name: "Side", Capacity: 100, IsSessionRoom: true},
			{ID: "room-c", Name: "Lounge", Capacity: 50, IsSessionRoom: false},
		},
		SlotTypes: []schedule.SlotType{
			{ID: "st-session", Label: "Session", IsSession: true},
			{ID: "st-break", Label: "Break", IsSession: false},
		},
		Sessions: sessions,
	}
}

var day1 = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
var day2 = time.Date(2026, time.June, 2, 0, 0, 0, 0, time.UTC)

func TestSuggest_PlacesEligibleSessionOnFreeSlot(t *testing.T) {
	breakSlot := schedule.Slot{
		ID: "slot-break", StartTime: "12:00", EndTime: "13:00", Duration: 60,
		RoomID: "room-a", SlotTypeID: "st-break",
	}
	days := []schedule.Day{
		snapshotDay("day-1", day1, 0, sessionSlot("slot-1", "room-a", "10:00", "10:40"), breakSlot),
	}
	snapshot := baseSnapshot(days,
		Session{ID: "sess-1", Status: StatusAccepted, SessionTypeID: "talk-40"},
	)

	suggestions := Suggest(snapshot, constantRng)

	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}
	got := suggestions[0]
	if got.DayID != "day-1" || got.SlotID != "slot-1" || got.RoomID != "room-a" || got.SessionID != "sess-1" {
		t.Fatalf("unexpected suggestion %+v", got)
	}
}

func TestSuggest_SkipsIneligibleAndAllocatedSessions(t *testing.T) {
	days := []schedule.Day{
		snapshotDay("day-1", day1, 0,
			sessionSlot("slot-1", "room-a", "10:00", "10:40"),
			sessionSlot("slot-2", "room-a", "11:00", "11:40"),
			sessionSlot("slot-3", "room-a", "13:00", "13:40"),
		),
	}
	snapshot := baseSnapshot(days,
		Session{ID: "sess-submitted", Status: StatusSubmitted, SessionTypeID: "talk-40"},
		Session{ID: "sess-rejected", Status: StatusRejected, SessionTypeID: "talk-40"},
		Session{ID: "sess-placed", Status: StatusScheduled, SessionTypeID: "talk-40"},
		Session{ID: "sess-free", Status: StatusAccepted, SessionTypeID: "talk-40"},
	)
	snapshot.Allocations = []Allocation{
		{ID: "alloc-1", DayID: "day-1", SlotID: "slot-1", RoomID: "room-a", SessionID: "sess-placed"},
	}

	suggestions := Suggest(snapshot, constantRng)

	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d: %+v", len(suggestions), suggestions)
	}
	if suggestions[0].SessionID != "sess-free" || suggestions[0].SlotID != "slot-2" {
		t.Fatalf("unexpected suggestion %+v", suggestions[0])
	}
}

func TestSuggest_HonorsSessionTypeAndSpeakerBlacklist(t *testing.T) {
	days := []schedule.Day{
		snapshotDay("day-1", day1, 0, sessionSlot("slot-1", "room-a", "10:00", "10:40")),
	}

	t.Run("session type mismatch", func(t *testing.T) {
		snapshot := baseSnapshot(days,
			Session{ID: "sess-1", Status: StatusAccepted, SessionTypeID: "workshop-120"},
		)
		if got := Suggest(snapshot, constantRng); len(got) != 0 {
			t.Fatalf("expected no suggestions, got %+v", got)
		}
	})

	t.Run("speaker blacklisted for the slot", func(t *testing.T) {
		snapshot := baseSnapshot(days,
			Session{ID: "sess-1", Status: StatusAccepted, SessionTypeID: "talk-40", SpeakerIDs: []string{"p-1"}},
		)
		snapshot.Speakers = []Speaker{
			{ID: "p-1", UnavailableSlotIDs: []string{"slot-1"}},
		}
		if got := Suggest(snapshot, constantRng); len(got) != 0 {
			t.Fatalf("expected no suggestions, got %+v", got)
		}
	})
}

func TestSuggest_ExcludesUnusableSlots(t *testing.T) {
	disabledDay := snapshotDay("day-1", day1, 0, sessionSlot("slot-1", "room-a", "10:00", "10:40"))
	disabledDay.DisabledRoomIDs = []string{"room-a"}

	days := []schedule.Day{
		disabledDay,
		snapshotDay("day-2", day2, 1,
			sessionSlot("slot-2", "room-c", "10:00", "10:40"),
			sessionSlot("slot-3", "room-missing", "11:00", "11:40"),
			sessionSlot("slot-4", "room-b", "13:00", "13:40"),
		),
	}
	snapshot := baseSnapshot(days,
		Session{ID: "sess-1", Status: StatusAccepted, SessionTypeID: "talk-40"},
	)

	suggestions := Suggest(snapshot, constantRng)

	if len(suggestions) != 1 || suggestions[0].SlotID != "slot-4" {
		t.Fatalf("expected the only usable slot to be slot-4, got %+v", suggestions)
	}
}

func TestSuggest_PrefersConstrainedSpeakers(t *testing.T) {
	days := []schedule.Day{
		snapshotDay("day-1", day1, 0,
			sessionSlot("slot-1", "room-a", "10:00", "10:40"),
			sessionSlot("slot-2", "room-a", "11:00", "11:40"),
		),
	}
	snapshot := baseSnapshot(days,
		Session{ID: "sess-flexible", Status: StatusAccepted, SessionTypeID: "talk-40", SpeakerIDs: []string{"p-free"}},
		Session{ID: "sess-constrained", Status: StatusAccepted, SessionTypeID: "talk-40", SpeakerIDs: []string{"p-busy"}},
	)
	snapshot.Speakers = []Speaker{
		{ID: "p-busy", UnavailableSlotIDs: []string{"slot-2"}},
	}

	suggestions := Suggest(snapshot, constantRng)

	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].SlotID != "slot-1" || suggestions[0].SessionID != "sess-constrained" {
		t.Fatalf("expected the constrained session to claim slot-1, got %+v", suggestions[0])
	}
	if suggestions[1].SessionID != "sess-flexible" {
		t.Fatalf("expected the flexible session on slot-2, got %+v", suggestions[1])
	}
}

func TestSuggest_SpreadsSpeakersAcrossDays(t *testing.T) {
	days := []schedule.Day{
		snapshotDay("day-1", day1, 0,
			sessionSlot("slot-1", "room-a", "10:00", "10:40"),
		),
	}
	snapshot := baseSnapshot(days,
		Session{ID: "sess-placed", Status: StatusScheduled, SessionTypeID: "talk-40", SpeakerIDs: []string{"p-1"}},
		Session{ID: "sess-same-speaker", Status: StatusAccepted, SessionTypeID: "talk-40", SpeakerIDs: []string{"p-1"}, ReviewAverage: 5},
		Session{ID: "sess-other", Status: StatusAccepted, SessionTypeID: "talk-40", SpeakerIDs: []string{"p-2"}, ReviewAverage: 1},
	)
	snapshot.Allocations = []Allocation{
		{ID: "alloc-1", DayID: "day-1", SlotID: "slot-0", RoomID: "room-b", SessionID: "sess-placed"},
	}

	suggestions := Suggest(snapshot, constantRng)

	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}
	if suggestions[0].SessionID != "sess-other" {
		t.Fatalf("expected the unbooked speaker to win despite a lower review, got %+v", suggestions[0])
	}
}

func TestSuggest_BreaksTiesByReviewAverage(t *testing.T) {
	days := []schedule.Day{
		snapshotDay("day-1", day1, 0, sessionSlot("slot-1", "room-a", "10:00", "10:40")),
	}
	snapshot := baseSnapshot(days,
		Session{ID: "sess-low", Status: StatusAccepted, SessionTypeID: "talk-40", ReviewAverage: 2.5},
		Session{ID: "sess-high", Status: StatusAccepted, SessionTypeID: "talk-40", ReviewAverage: 4.5},
	)

	suggestions := Suggest(snapshot, constantRng)

	if len(suggestions) != 1 || suggestions[0].SessionID != "sess-high" {
		t.Fatalf("expected the higher reviewed session, got %+v", suggestions)
	}
}

func TestSuggest_PrefersTrackDiversityWithinTimeSlice(t *testing.T) {
	days := []schedule.Day{
		snapshotDay("day-1", day1, 0,
			sessionSlot("slot-a", "room-a", "10:00", "10:40"),
			sessionSlot("slot-b", "room-b", "10:00", "10:40"),
		),
	}
	snapshot := baseSnapshot(days,
		Session{ID: "sess-t1-best", Status: StatusAccepted, SessionTypeID: "talk-40", TrackID: "t1", ReviewAverage: 5},
		Session{ID: "sess-t1-next", Status: StatusAccepted, SessionTypeID: "talk-40", TrackID: "t1", ReviewAverage: 4},
		Session{ID: "sess-t2", Status: StatusAccepted, SessionTypeID: "talk-40", TrackID: "t2", ReviewAverage: 3},
	)

	suggestions := Suggest(snapshot, constantRng)

	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	// room-a has the larger capacity and is offered first within the tied time.
	if suggestions[0].SlotID != "slot-a" || suggestions[0].SessionID != "sess-t1-best" {
		t.Fatalf("unexpected first suggestion %+v", suggestions[0])
	}
	// t1 is now covered for the 10:00 slice, so the t2 session wins room-b even
	// with the lowest review average.
	if suggestions[1].SlotID != "slot-b" || suggestions[1].SessionID != "sess-t2" {
		t.Fatalf("unexpected second suggestion %+v", suggestions[1])
	}
}

func TestSuggest_OrdersSlotsByDayTimeAndCapacity(t *testing.T) {
	days := []schedule.Day{
		snapshotDay("day-2", day2, 1, sessionSlot("slot-d2", "room-a", "09:00", "09:40")),
		snapshotDay("day-1", day1, 0,
			sessionSlot("slot-late", "room-a", "14:00", "14:40"),
			sessionSlot("slot-early-small", "room-b", "10:00", "10:40"),
			sessionSlot("slot-early-big", "room-a", "10:00", "10:40"),
		),
	}
	var sessions []Session
	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		sessions = append(sessions, Session{ID: id, Status: StatusAccepted, SessionTypeID: "talk-40"})
	}
	snapshot := baseSnapshot(days, sessions...)

	suggestions := Suggest(snapshot, constantRng)

	if len(suggestions) != 4 {
		t.Fatalf("expected 4 suggestions, got %d", len(suggestions))
	}
	wantOrder := []string{"slot-early-big", "slot-early-small", "slot-late", "slot-d2"}
	for i, want := range wantOrder {
		if suggestions[i].SlotID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, suggestions[i].SlotID)
		}
	}
}

func TestSuggest_RandomTieBreakUsesInjectedSource(t *testing.T) {
	days := []schedule.Day{
		snapshotDay("day-1", day1, 0, sessionSlot("slot-1", "room-a", "10:00", "10:40")),
	}
	twin := func(id string) Session {
		return Session{ID: id, Status: StatusAccepted, SessionTypeID: "talk-40", ReviewAverage: 3}
	}
	snapshot := baseSnapshot(days, twin("sess-a"), twin("sess-b"))

	first := Suggest(snapshot, sequenceRng(0.9, 0.1))
	second := Suggest(snapshot, sequenceRng(0.1, 0.9))

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one suggestion per run")
	}
	if first[0].SessionID != "sess-a" {
		t.Fatalf("expected sess-a to win the first draw, got %s", first[0].SessionID)
	}
	if second[0].SessionID != "sess-b" {
		t.Fatalf("expected sess-b to win the second draw, got %s", second[0].SessionID)
	}
}

func TestSuggest_EmptySnapshot(t *testing.T) {
	if got := Suggest(Snapshot{}, nil); len(got) != 0 {
		t.Fatalf("expected no suggestions from an empty snapshot, got %+v", got)
	}
}
