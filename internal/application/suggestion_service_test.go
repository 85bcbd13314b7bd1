package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/conference-planner/internal/allocation"
	"github.com/example/conference-planner/internal/persistence"
)

type assignerSpy struct {
	calls []AssignParams
	errs  map[string]error
}

func (a *assignerSpy) Assign(ctx context.Context, params AssignParams) (persistence.SessionAllocation, error) {
	a.calls = append(a.calls, params)
	if err := a.errs[params.SessionID]; err != nil {
		return persistence.SessionAllocation{}, err
	}
	return persistence.SessionAllocation{ID: "alloc-" + params.SessionID}, nil
}

func newSuggestionFixture() (*SuggestionService, *memStore, *assignerSpy) {
	store := newMemStore()
	store.addConference(allocConference())
	store.slotTypes = defaultSlotTypes()
	spy := &assignerSpy{errs: make(map[string]error)}
	service := NewSuggestionService(store, store, store, store, store, spy)
	return service, store, spy
}

func TestSuggestionService_Suggest(t *testing.T) {
	service, store, _ := newSuggestionFixture()
	store.addSession(acceptedSession("sess-1"))

	suggestions, err := service.Suggest(context.Background(), SuggestParams{
		Principal:    organizer,
		ConferenceID: "conf-1",
	})
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].SessionID != "sess-1" {
		t.Fatalf("expected one suggestion for sess-1, got %+v", suggestions)
	}
	if suggestions[0].SlotID == "slot-break" {
		t.Fatalf("a break slot must never be suggested")
	}
}

func TestSuggestionService_Suggest_SkipsSessionsWithoutSubmission(t *testing.T) {
	service, store, _ := newSuggestionFixture()
	bare := acceptedSession("sess-bare")
	bare.Submission = nil
	store.addSession(bare)

	suggestions, err := service.Suggest(context.Background(), SuggestParams{
		Principal:    organizer,
		ConferenceID: "conf-1",
	})
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if len(suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %+v", suggestions)
	}
}

func TestSuggestionService_Suggest_SeededRunsAreReproducible(t *testing.T) {
	service, store, _ := newSuggestionFixture()
	for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
		store.addSession(acceptedSession(id))
	}

	seed := uint64(42)
	params := SuggestParams{Principal: organizer, ConferenceID: "conf-1", Seed: &seed}

	first, err := service.Suggest(context.Background(), params)
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	second, err := service.Suggest(context.Background(), params)
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("seeded runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded runs differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSuggestionService_Suggest_HonorsExistingAllocations(t *testing.T) {
	service, store, _ := newSuggestionFixture()
	store.addSession(acceptedSession("sess-1"))

	placed := acceptedSession("sess-2")
	submission := *placed.Submission
	submission.Status = "SCHEDULED"
	placed.Submission = &submission
	store.addSession(placed)
	store.addAllocation(persistence.SessionAllocation{
		ID: "alloc-1", ConferenceID: "conf-1", DayID: "day-1",
		SlotID: "slot-1", RoomID: "room-1", SessionID: "sess-2",
	})

	suggestions, err := service.Suggest(context.Background(), SuggestParams{
		Principal:    organizer,
		ConferenceID: "conf-1",
	})
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].SessionID != "sess-1" {
		t.Fatalf("expected one suggestion for the free session, got %+v", suggestions)
	}
	if suggestions[0].SlotID == "slot-1" && suggestions[0].RoomID == "room-1" {
		t.Fatalf("an occupied triple must not be suggested again")
	}
}

func TestSuggestionService_Suggest_UnknownConference(t *testing.T) {
	service, _, _ := newSuggestionFixture()

	_, err := service.Suggest(context.Background(), SuggestParams{
		Principal:    organizer,
		ConferenceID: "conf-missing",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSuggestionService_Apply(t *testing.T) {
	service, _, spy := newSuggestionFixture()
	stale := &ValidationError{}
	stale.add("slot_id", "slot does not host sessions")
	spy.errs["sess-2"] = stale

	result, err := service.Apply(context.Background(), ApplySuggestionsParams{
		Principal:    organizer,
		ConferenceID: "conf-1",
		Suggestions: []allocation.Suggestion{
			{DayID: "day-1", SlotID: "slot-1", RoomID: "room-1", SessionID: "sess-1"},
			{DayID: "day-1", SlotID: "slot-2", RoomID: "room-1", SessionID: "sess-2"},
			{DayID: "day-1", SlotID: "slot-3", RoomID: "room-2", SessionID: "sess-3"},
		},
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if len(result.Applied) != 2 {
		t.Fatalf("expected 2 applied suggestions, got %+v", result.Applied)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Suggestion.SessionID != "sess-2" {
		t.Fatalf("expected sess-2 to be skipped, got %+v", result.Skipped)
	}
	if result.Skipped[0].Reason != "validation" {
		t.Fatalf("expected the refusal kind as reason, got %q", result.Skipped[0].Reason)
	}
	if len(spy.calls) != 3 {
		t.Fatalf("expected every suggestion to be attempted, got %d calls", len(spy.calls))
	}
}

func TestSuggestionService_Apply_SpeakerConflictIsSkippable(t *testing.T) {
	service, _, spy := newSuggestionFixture()
	spy.errs["sess-1"] = &SpeakerConflictError{Conflicts: []SpeakerConflict{{SpeakerLabel: "Ada"}}}

	result, err := service.Apply(context.Background(), ApplySuggestionsParams{
		Principal:    organizer,
		ConferenceID: "conf-1",
		Suggestions: []allocation.Suggestion{
			{DayID: "day-1", SlotID: "slot-1", RoomID: "room-1", SessionID: "sess-1"},
		},
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != "speaker_conflict" {
		t.Fatalf("expected a skipped speaker conflict, got %+v", result)
	}
}

func TestSuggestionService_Apply_StorageFailureAborts(t *testing.T) {
	service, _, spy := newSuggestionFixture()
	boom := errors.New("disk gone")
	spy.errs["sess-1"] = boom

	_, err := service.Apply(context.Background(), ApplySuggestionsParams{
		Principal:    organizer,
		ConferenceID: "conf-1",
		Suggestions: []allocation.Suggestion{
			{DayID: "day-1", SlotID: "slot-1", RoomID: "room-1", SessionID: "sess-1"},
			{DayID: "day-1", SlotID: "slot-2", RoomID: "room-1", SessionID: "sess-2"},
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the storage failure to abort the batch, got %v", err)
	}
	if len(spy.calls) != 1 {
		t.Fatalf("an aborted batch must stop at the failing entry, got %d calls", len(spy.calls))
	}
}

func TestSuggestionService_Apply_Unauthorized(t *testing.T) {
	service, _, _ := newSuggestionFixture()

	if _, err := service.Apply(context.Background(), ApplySuggestionsParams{ConferenceID: "conf-1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
