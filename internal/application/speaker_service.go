package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/conference-planner/internal/persistence"
)

// SpeakerDirectory captures the speaker persistence operations used by the
// speaker service.
type SpeakerDirectory interface {
	SpeakerStore
	GetSpeaker(ctx context.Context, conferenceID, personID string) (persistence.ConferenceSpeaker, error)
	ReplaceUnavailableSlots(ctx context.Context, conferenceID, personID string, slotIDs []string) error
}

// SpeakerService reads speaker participation records and maintains their slot
// unavailability.
type SpeakerService struct {
	speakers    SpeakerDirectory
	conferences ConferenceStore
	invalidate  func(conferenceID string)
	logger      *slog.Logger
}

// NewSpeakerService constructs a speaker service. The invalidate callback is
// invoked after availability edits so cached speaker data is dropped.
func NewSpeakerService(speakers SpeakerDirectory, conferences ConferenceStore, invalidate func(conferenceID string)) *SpeakerService {
	return NewSpeakerServiceWithLogger(speakers, conferences, invalidate, nil)
}

// NewSpeakerServiceWithLogger constructs a speaker service with a specified logger.
func NewSpeakerServiceWithLogger(speakers SpeakerDirectory, conferences ConferenceStore, invalidate func(conferenceID string), logger *slog.Logger) *SpeakerService {
	if invalidate == nil {
		invalidate = func(string) {}
	}
	return &SpeakerService{
		speakers:    speakers,
		conferences: conferences,
		invalidate:  invalidate,
		logger:      defaultLogger(logger),
	}
}

// ListSpeakers returns every speaker participating in a conference.
func (s *SpeakerService) ListSpeakers(ctx context.Context, principal Principal, conferenceID string) ([]persistence.ConferenceSpeaker, error) {
	if s == nil {
		return nil, fmt.Errorf("SpeakerService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	speakers, err := s.speakers.ListSpeakers(ctx, conferenceID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return speakers, nil
}

// GetSpeaker loads one participation record.
func (s *SpeakerService) GetSpeaker(ctx context.Context, principal Principal, conferenceID, personID string) (persistence.ConferenceSpeaker, error) {
	if s == nil {
		return persistence.ConferenceSpeaker{}, fmt.Errorf("SpeakerService is nil")
	}
	if principal.UserID == "" {
		return persistence.ConferenceSpeaker{}, ErrUnauthorized
	}

	speaker, err := s.speakers.GetSpeaker(ctx, conferenceID, personID)
	if err != nil {
		return persistence.ConferenceSpeaker{}, mapStorageError(err)
	}
	return speaker, nil
}

// ReplaceAvailability overwrites the speaker's unavailable slot set. Every
// referenced slot must exist in the conference.
func (s *SpeakerService) ReplaceAvailability(ctx context.Context, params ReplaceAvailabilityParams) error {
	if s == nil {
		return fmt.Errorf("SpeakerService is nil")
	}
	if params.Principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := serviceLogger(ctx, s.logger, "SpeakerService", "ReplaceAvailability",
		"conference_id", params.ConferenceID,
		"person_id", params.PersonID,
	)

	conference, err := s.conferences.GetConference(ctx, params.ConferenceID)
	if err != nil {
		return mapStorageError(err)
	}

	known := make(map[string]bool)
	for _, day := range conference.Days {
		for _, slot := range day.Slots {
			known[slot.ID] = true
		}
	}
	vErr := &ValidationError{}
	for _, slotID := range params.UnavailableSlotIDs {
		if !known[slotID] {
			vErr.add("unavailable_slot_ids", fmt.Sprintf("slot %s does not exist in this conference", slotID))
		}
	}
	if vErr.HasErrors() {
		return vErr
	}

	if err := s.speakers.ReplaceUnavailableSlots(ctx, params.ConferenceID, params.PersonID, params.UnavailableSlotIDs); err != nil {
		return mapStorageError(err)
	}
	s.invalidate(params.ConferenceID)

	logger.InfoContext(ctx, "speaker availability replaced",
		"unavailable_slots", len(params.UnavailableSlotIDs),
	)
	return nil
}
