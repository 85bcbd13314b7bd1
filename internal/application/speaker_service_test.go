package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/conference-planner/internal/persistence"
)

func newSpeakerFixture() (*SpeakerService, *memStore, *[]string) {
	store := newMemStore()
	store.addConference(planningConference())
	store.speakers["conf-1"] = []persistence.ConferenceSpeaker{
		{ConferenceID: "conf-1", PersonID: "person-1", DisplayName: "Ada"},
		{ConferenceID: "conf-1", PersonID: "person-2", DisplayName: "Brendan"},
	}

	var invalidated []string
	service := NewSpeakerService(store, store, func(conferenceID string) {
		invalidated = append(invalidated, conferenceID)
	})
	return service, store, &invalidated
}

func TestSpeakerService_ListSpeakers(t *testing.T) {
	service, _, _ := newSpeakerFixture()

	speakers, err := service.ListSpeakers(context.Background(), organizer, "conf-1")
	if err != nil {
		t.Fatalf("ListSpeakers returned error: %v", err)
	}
	if len(speakers) != 2 {
		t.Fatalf("expected 2 speakers, got %d", len(speakers))
	}

	if _, err := service.ListSpeakers(context.Background(), Principal{}, "conf-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSpeakerService_GetSpeaker(t *testing.T) {
	service, _, _ := newSpeakerFixture()

	speaker, err := service.GetSpeaker(context.Background(), organizer, "conf-1", "person-1")
	if err != nil {
		t.Fatalf("GetSpeaker returned error: %v", err)
	}
	if speaker.DisplayName != "Ada" {
		t.Fatalf("unexpected speaker %+v", speaker)
	}

	if _, err := service.GetSpeaker(context.Background(), organizer, "conf-1", "person-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSpeakerService_ReplaceAvailability(t *testing.T) {
	service, store, invalidated := newSpeakerFixture()

	err := service.ReplaceAvailability(context.Background(), ReplaceAvailabilityParams{
		Principal:          organizer,
		ConferenceID:       "conf-1",
		PersonID:           "person-1",
		UnavailableSlotIDs: []string{"slot-1"},
	})
	if err != nil {
		t.Fatalf("ReplaceAvailability returned error: %v", err)
	}

	speaker, _ := store.GetSpeaker(context.Background(), "conf-1", "person-1")
	if len(speaker.UnavailableSlotIDs) != 1 || speaker.UnavailableSlotIDs[0] != "slot-1" {
		t.Fatalf("expected the blacklist to be replaced, got %v", speaker.UnavailableSlotIDs)
	}
	if len(*invalidated) != 1 || (*invalidated)[0] != "conf-1" {
		t.Fatalf("expected the speaker cache to be invalidated once, got %v", *invalidated)
	}
}

func TestSpeakerService_ReplaceAvailability_ClearsBlacklist(t *testing.T) {
	service, store, _ := newSpeakerFixture()
	store.speakers["conf-1"][0].UnavailableSlotIDs = []string{"slot-1"}

	err := service.ReplaceAvailability(context.Background(), ReplaceAvailabilityParams{
		Principal:    organizer,
		ConferenceID: "conf-1",
		PersonID:     "person-1",
	})
	if err != nil {
		t.Fatalf("ReplaceAvailability returned error: %v", err)
	}
	speaker, _ := store.GetSpeaker(context.Background(), "conf-1", "person-1")
	if len(speaker.UnavailableSlotIDs) != 0 {
		t.Fatalf("expected an empty blacklist, got %v", speaker.UnavailableSlotIDs)
	}
}

func TestSpeakerService_ReplaceAvailability_RejectsUnknownSlots(t *testing.T) {
	service, store, invalidated := newSpeakerFixture()

	err := service.ReplaceAvailability(context.Background(), ReplaceAvailabilityParams{
		Principal:          organizer,
		ConferenceID:       "conf-1",
		PersonID:           "person-1",
		UnavailableSlotIDs: []string{"slot-1", "slot-missing"},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["unavailable_slot_ids"]; !ok {
		t.Fatalf("expected unavailable_slot_ids to be reported, got %v", vErr.FieldErrors)
	}

	speaker, _ := store.GetSpeaker(context.Background(), "conf-1", "person-1")
	if len(speaker.UnavailableSlotIDs) != 0 {
		t.Fatalf("a refused replacement must not persist, got %v", speaker.UnavailableSlotIDs)
	}
	if len(*invalidated) != 0 {
		t.Fatalf("a refused replacement must not invalidate the cache")
	}
}

func TestSpeakerService_ReplaceAvailability_UnknownSpeaker(t *testing.T) {
	service, _, _ := newSpeakerFixture()

	err := service.ReplaceAvailability(context.Background(), ReplaceAvailabilityParams{
		Principal:          organizer,
		ConferenceID:       "conf-1",
		PersonID:           "person-missing",
		UnavailableSlotIDs: []string{"slot-1"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
