package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/conference-planner/internal/persistence"
	"github.com/example/conference-planner/internal/testfixtures"
)

func TestSpeakerRepository_UpsertAndGet(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	conference := testfixtures.NewConferenceFixture()
	if err := harness.Conferences.CreateConference(ctx, conference); err != nil {
		t.Fatalf("CreateConference returned error: %v", err)
	}

	speaker := testfixtures.NewSpeakerFixture(conference.ID,
		testfixtures.WithSpeakerUnavailableSlots("slot-a", "slot-b"),
		testfixtures.WithSpeakerSessions("session-a"))
	if err := harness.Speakers.UpsertSpeaker(ctx, speaker); err != nil {
		t.Fatalf("UpsertSpeaker returned error: %v", err)
	}

	loaded, err := harness.Speakers.GetSpeaker(ctx, conference.ID, speaker.PersonID)
	if err != nil {
		t.Fatalf("GetSpeaker returned error: %v", err)
	}
	if loaded.DisplayName != speaker.DisplayName {
		t.Fatalf("unexpected speaker %+v", loaded)
	}
	if len(loaded.UnavailableSlotIDs) != 2 || loaded.UnavailableSlotIDs[0] != "slot-a" {
		t.Fatalf("blacklist did not round-trip: %v", loaded.UnavailableSlotIDs)
	}
	if len(loaded.SessionIDs) != 1 || loaded.SessionIDs[0] != "session-a" {
		t.Fatalf("session set did not round-trip: %v", loaded.SessionIDs)
	}
}

func TestSpeakerRepository_UpsertUpdatesInPlace(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	conference := testfixtures.NewConferenceFixture()
	if err := harness.Conferences.CreateConference(ctx, conference); err != nil {
		t.Fatalf("CreateConference returned error: %v", err)
	}

	speaker := testfixtures.NewSpeakerFixture(conference.ID,
		testfixtures.WithSpeakerUnavailableSlots("slot-a"))
	if err := harness.Speakers.UpsertSpeaker(ctx, speaker); err != nil {
		t.Fatalf("UpsertSpeaker returned error: %v", err)
	}

	speaker.DisplayName = "Renamed"
	speaker.UnavailableSlotIDs = []string{"slot-b"}
	if err := harness.Speakers.UpsertSpeaker(ctx, speaker); err != nil {
		t.Fatalf("second UpsertSpeaker returned error: %v", err)
	}

	listed, err := harness.Speakers.ListSpeakers(ctx, conference.ID)
	if err != nil {
		t.Fatalf("ListSpeakers returned error: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("an upsert must not duplicate the record, got %d", len(listed))
	}
	if listed[0].DisplayName != "Renamed" {
		t.Fatalf("display name was not updated: %+v", listed[0])
	}
	if len(listed[0].UnavailableSlotIDs) != 1 || listed[0].UnavailableSlotIDs[0] != "slot-b" {
		t.Fatalf("blacklist was not replaced: %v", listed[0].UnavailableSlotIDs)
	}
}

func TestSpeakerRepository_ReplaceUnavailableSlots(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	conference := testfixtures.NewConferenceFixture()
	if err := harness.Conferences.CreateConference(ctx, conference); err != nil {
		t.Fatalf("CreateConference returned error: %v", err)
	}
	speaker := testfixtures.NewSpeakerFixture(conference.ID)
	if err := harness.Speakers.UpsertSpeaker(ctx, speaker); err != nil {
		t.Fatalf("UpsertSpeaker returned error: %v", err)
	}

	if err := harness.Speakers.ReplaceUnavailableSlots(ctx, conference.ID, speaker.PersonID, []string{"slot-x"}); err != nil {
		t.Fatalf("ReplaceUnavailableSlots returned error: %v", err)
	}
	loaded, err := harness.Speakers.GetSpeaker(ctx, conference.ID, speaker.PersonID)
	if err != nil {
		t.Fatalf("GetSpeaker returned error: %v", err)
	}
	if len(loaded.UnavailableSlotIDs) != 1 || loaded.UnavailableSlotIDs[0] != "slot-x" {
		t.Fatalf("blacklist was not replaced: %v", loaded.UnavailableSlotIDs)
	}

	if err := harness.Speakers.ReplaceUnavailableSlots(ctx, conference.ID, speaker.PersonID, nil); err != nil {
		t.Fatalf("ReplaceUnavailableSlots returned error: %v", err)
	}
	loaded, err = harness.Speakers.GetSpeaker(ctx, conference.ID, speaker.PersonID)
	if err != nil {
		t.Fatalf("GetSpeaker returned error: %v", err)
	}
	if len(loaded.UnavailableSlotIDs) != 0 {
		t.Fatalf("expected an empty blacklist, got %v", loaded.UnavailableSlotIDs)
	}

	err = harness.Speakers.ReplaceUnavailableSlots(ctx, conference.ID, "person-missing", []string{"slot-x"})
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown speaker, got %v", err)
	}
}

func TestSpeakerRepository_ListSpeakers_ScopedToConference(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	first := testfixtures.NewConferenceFixture()
	second := testfixtures.NewConferenceFixture()
	for _, conference := range []persistence.Conference{first, second} {
		if err := harness.Conferences.CreateConference(ctx, conference); err != nil {
			t.Fatalf("CreateConference returned error: %v", err)
		}
	}

	mine := testfixtures.NewSpeakerFixture(first.ID)
	other := testfixtures.NewSpeakerFixture(second.ID)
	for _, speaker := range []persistence.ConferenceSpeaker{mine, other} {
		if err := harness.Speakers.UpsertSpeaker(ctx, speaker); err != nil {
			t.Fatalf("UpsertSpeaker returned error: %v", err)
		}
	}

	listed, err := harness.Speakers.ListSpeakers(ctx, first.ID)
	if err != nil {
		t.Fatalf("ListSpeakers returned error: %v", err)
	}
	if len(listed) != 1 || listed[0].PersonID != mine.PersonID {
		t.Fatalf("expected only the first conference's speaker, got %+v", listed)
	}
}
