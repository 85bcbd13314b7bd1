package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/example/conference-planner/internal/allocation"
	"github.com/example/conference-planner/internal/persistence"
)

// Assigner commits one assignment through the allocation store. The
// suggestion service applies computed suggestions through it so each one is
// re-validated against live data.
type Assigner interface {
	Assign(ctx context.Context, params AssignParams) (persistence.SessionAllocation, error)
}

// SuggestionService runs the auto-allocator: it loads a point-in-time
// snapshot of the conference, computes greedy placement suggestions, and
// optionally commits them. Suggestions are advisory; between computation and
// application the schedule may have changed, so application skips entries the
// live store refuses instead of failing the batch.
type SuggestionService struct {
	conferences ConferenceStore
	slotTypes   SlotTypeStore
	sessions    SessionStore
	allocations AllocationStore
	speakers    SpeakerStore
	assigner    Assigner
	logger      *slog.Logger
}

// NewSuggestionService constructs a suggestion service with the provided dependencies.
func NewSuggestionService(conferences ConferenceStore, slotTypes SlotTypeStore, sessions SessionStore, allocations AllocationStore, speakers SpeakerStore, assigner Assigner) *SuggestionService {
	return NewSuggestionServiceWithLogger(conferences, slotTypes, sessions, allocations, speakers, assigner, nil)
}

// NewSuggestionServiceWithLogger constructs a suggestion service with a specified logger.
func NewSuggestionServiceWithLogger(conferences ConferenceStore, slotTypes SlotTypeStore, sessions SessionStore, allocations AllocationStore, speakers SpeakerStore, assigner Assigner, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{
		conferences: conferences,
		slotTypes:   slotTypes,
		sessions:    sessions,
		allocations: allocations,
		speakers:    speakers,
		assigner:    assigner,
		logger:      defaultLogger(logger),
	}
}

func (s *SuggestionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SuggestionService", operation, attrs...)
}

// Suggest computes placement suggestions for the conference's unallocated
// eligible sessions. A non-nil seed makes the run reproducible.
func (s *SuggestionService) Suggest(ctx context.Context, params SuggestParams) ([]allocation.Suggestion, error) {
	if s == nil {
		return nil, fmt.Errorf("SuggestionService is nil")
	}
	if params.Principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	snapshot, err := s.buildSnapshot(ctx, params.ConferenceID)
	if err != nil {
		return nil, err
	}

	var rng func() float64
	if params.Seed != nil {
		source := rand.New(rand.NewPCG(*params.Seed, *params.Seed))
		rng = source.Float64
	}

	suggestions := allocation.Suggest(snapshot, rng)

	s.loggerWith(ctx, "Suggest", "conference_id", params.ConferenceID).InfoContext(ctx,
		"suggestions computed",
		"sessions", len(snapshot.Sessions),
		"suggestions", len(suggestions),
	)
	return suggestions, nil
}

// Apply commits suggestions through the allocation store. Entries the live
// store refuses, because the schedule moved underneath them, are reported as
// skipped with the refusal kind; storage failures abort the batch.
func (s *SuggestionService) Apply(ctx context.Context, params ApplySuggestionsParams) (ApplySuggestionsResult, error) {
	if s == nil {
		return ApplySuggestionsResult{}, fmt.Errorf("SuggestionService is nil")
	}
	if params.Principal.UserID == "" {
		return ApplySuggestionsResult{}, ErrUnauthorized
	}
	if s.assigner == nil {
		return ApplySuggestionsResult{}, fmt.Errorf("assigner not configured")
	}

	logger := s.loggerWith(ctx, "Apply", "conference_id", params.ConferenceID)

	var result ApplySuggestionsResult
	for _, suggestion := range params.Suggestions {
		_, err := s.assigner.Assign(ctx, AssignParams{
			Principal:    params.Principal,
			ConferenceID: params.ConferenceID,
			DayID:        suggestion.DayID,
			SlotID:       suggestion.SlotID,
			RoomID:       suggestion.RoomID,
			SessionID:    suggestion.SessionID,
		})
		if err != nil {
			if skippable(err) {
				result.Skipped = append(result.Skipped, SkippedSuggestion{
					Suggestion: suggestion,
					Reason:     ErrorKind(err),
				})
				continue
			}
			return ApplySuggestionsResult{}, err
		}
		result.Applied = append(result.Applied, suggestion)
	}

	logger.InfoContext(ctx, "suggestions applied",
		"applied", len(result.Applied),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// skippable reports whether an assignment refusal is a per-suggestion outcome
// rather than a batch-level failure.
func skippable(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	var cErr *SpeakerConflictError
	return errors.As(err, &cErr)
}

// buildSnapshot loads the allocator's in-memory view of one conference.
func (s *SuggestionService) buildSnapshot(ctx context.Context, conferenceID string) (allocation.Snapshot, error) {
	conference, err := s.conferences.GetConference(ctx, conferenceID)
	if err != nil {
		return allocation.Snapshot{}, mapStorageError(err)
	}

	snapshot := allocation.Snapshot{
		Days:  conference.Days,
		Rooms: conference.Rooms,
	}

	if s.slotTypes != nil {
		listed, err := s.slotTypes.ListSlotTypes(ctx)
		if err != nil {
			return allocation.Snapshot{}, mapStorageError(err)
		}
		snapshot.SlotTypes = listed
	}

	sessions, err := s.sessions.ListSessions(ctx, conferenceID)
	if err != nil {
		return allocation.Snapshot{}, mapStorageError(err)
	}
	for _, session := range sessions {
		if session.Submission == nil {
			continue
		}
		snapshot.Sessions = append(snapshot.Sessions, allocation.Session{
			ID:            session.ID,
			Title:         session.Title,
			SpeakerIDs:    session.SpeakerIDs(),
			Status:        allocation.Status(session.Submission.Status),
			SessionTypeID: session.Submission.SessionTypeID,
			TrackID:       session.Submission.TrackID,
			ReviewAverage: session.Submission.ReviewAverage,
		})
	}

	allocations, err := s.allocations.ListAllocations(ctx, conferenceID)
	if err != nil {
		return allocation.Snapshot{}, mapStorageError(err)
	}
	for _, alloc := range allocations {
		snapshot.Allocations = append(snapshot.Allocations, allocation.Allocation{
			ID:        alloc.ID,
			DayID:     alloc.DayID,
			SlotID:    alloc.SlotID,
			RoomID:    alloc.RoomID,
			SessionID: alloc.SessionID,
		})
	}

	if s.speakers != nil {
		speakers, err := s.speakers.ListSpeakers(ctx, conferenceID)
		if err != nil {
			return allocation.Snapshot{}, mapStorageError(err)
		}
		for _, speaker := range speakers {
			snapshot.Speakers = append(snapshot.Speakers, allocation.Speaker{
				ID:                 speaker.PersonID,
				DisplayName:        speaker.DisplayName,
				UnavailableSlotIDs: speaker.UnavailableSlotIDs,
				SessionIDs:         speaker.SessionIDs,
			})
		}
	}

	return snapshot, nil
}
