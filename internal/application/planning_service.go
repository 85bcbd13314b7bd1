package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/conference-planner/internal/persistence"
	"github.com/example/conference-planner/internal/schedule"
)

// ConferenceStore captures the persistence operations needed by the planning
// service. The sqlite repositories satisfy it directly.
type ConferenceStore interface {
	GetConference(ctx context.Context, id string) (persistence.Conference, error)
	ListConferences(ctx context.Context) ([]persistence.Conference, error)
	ReplaceDaySlots(ctx context.Context, conferenceID, dayID string, slots []schedule.Slot) error
}

// SlotTypeStore exposes the global slot type reference list.
type SlotTypeStore interface {
	ListSlotTypes(ctx context.Context) ([]schedule.SlotType, error)
}

// AllocationReleaser clears the allocations referencing a slot before the
// slot disappears, rolling session statuses back as needed.
type AllocationReleaser interface {
	ReleaseSlot(ctx context.Context, conferenceID, dayID, slotID string) error
}

// PlanningService edits the day and slot structure of a conference. Every
// structural mutation runs through the slot validator; batch operations (day
// copies, room copies, template expansion) run through the batch acceptor so
// the persisted slot set is always internally consistent.
type PlanningService struct {
	conferences ConferenceStore
	slotTypes   SlotTypeStore
	releaser    AllocationReleaser
	idGenerator func() string
	logger      *slog.Logger
}

// NewPlanningService constructs a planning service with the provided dependencies.
func NewPlanningService(conferences ConferenceStore, slotTypes SlotTypeStore, releaser AllocationReleaser, idGenerator func() string) *PlanningService {
	return NewPlanningServiceWithLogger(conferences, slotTypes, releaser, idGenerator, nil)
}

// NewPlanningServiceWithLogger constructs a planning service with a specified logger.
func NewPlanningServiceWithLogger(conferences ConferenceStore, slotTypes SlotTypeStore, releaser AllocationReleaser, idGenerator func() string, logger *slog.Logger) *PlanningService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &PlanningService{
		conferences: conferences,
		slotTypes:   slotTypes,
		releaser:    releaser,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *PlanningService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PlanningService", operation, attrs...)
}

// GetConference loads the full planning structure of one conference.
func (s *PlanningService) GetConference(ctx context.Context, principal Principal, id string) (persistence.Conference, error) {
	if s == nil {
		return persistence.Conference{}, fmt.Errorf("PlanningService is nil")
	}
	if principal.UserID == "" {
		return persistence.Conference{}, ErrUnauthorized
	}

	conference, err := s.conferences.GetConference(ctx, id)
	if err != nil {
		return persistence.Conference{}, mapStorageError(err)
	}
	return conference, nil
}

// ListConferences returns every conference.
func (s *PlanningService) ListConferences(ctx context.Context, principal Principal) ([]persistence.Conference, error) {
	if s == nil {
		return nil, fmt.Errorf("PlanningService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	conferences, err := s.conferences.ListConferences(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return conferences, nil
}

// ValidateSlot dry-runs the slot validator against the live day without
// persisting anything. The returned codes are data, not an error: an empty
// list means the candidate would be accepted.
func (s *PlanningService) ValidateSlot(ctx context.Context, params ValidateSlotParams) ([]schedule.ErrorCode, error) {
	if s == nil {
		return nil, fmt.Errorf("PlanningService is nil")
	}
	if params.Principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	conference, day, slotTypes, err := s.loadDay(ctx, params.ConferenceID, params.DayID)
	if err != nil {
		return nil, err
	}

	candidate := slotFromInput(params.SlotID, params.Input)
	return schedule.Validate(candidate, day, slotTypes, conference.SessionTypes, conference.Rooms), nil
}

// CreateSlot validates a new slot against its day and persists it when the
// validator reports no codes.
func (s *PlanningService) CreateSlot(ctx context.Context, params CreateSlotParams) (SlotResult, error) {
	if s == nil {
		return SlotResult{}, fmt.Errorf("PlanningService is nil")
	}
	if params.Principal.UserID == "" {
		return SlotResult{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateSlot",
		"conference_id", params.ConferenceID,
		"day_id", params.DayID,
	)

	conference, day, slotTypes, err := s.loadDay(ctx, params.ConferenceID, params.DayID)
	if err != nil {
		return SlotResult{}, err
	}

	candidate := slotFromInput(s.idGenerator(), params.Input)
	codes := schedule.Validate(candidate, day, slotTypes, conference.SessionTypes, conference.Rooms)
	if len(codes) > 0 {
		logger.InfoContext(ctx, "slot rejected", "slot_id", candidate.ID, "codes", codes)
		return SlotResult{Slot: candidate, ErrorCodes: codes}, nil
	}

	slots := append(append([]schedule.Slot{}, day.Slots...), candidate)
	if err := s.conferences.ReplaceDaySlots(ctx, params.ConferenceID, params.DayID, slots); err != nil {
		return SlotResult{}, mapStorageError(err)
	}

	logger.InfoContext(ctx, "slot created", "slot_id", candidate.ID)
	return SlotResult{Slot: candidate}, nil
}

// UpdateSlot revalidates an existing slot with new attributes and persists
// the replacement when the validator reports no codes. The slot keeps its
// identity, so it is excluded from overlap checks against itself.
func (s *PlanningService) UpdateSlot(ctx context.Context, params UpdateSlotParams) (SlotResult, error) {
	if s == nil {
		return SlotResult{}, fmt.Errorf("PlanningService is nil")
	}
	if params.Principal.UserID == "" {
		return SlotResult{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateSlot",
		"conference_id", params.ConferenceID,
		"day_id", params.DayID,
		"slot_id", params.SlotID,
	)

	conference, day, slotTypes, err := s.loadDay(ctx, params.ConferenceID, params.DayID)
	if err != nil {
		return SlotResult{}, err
	}
	if _, ok := day.FindSlot(params.SlotID); !ok {
		return SlotResult{}, ErrNotFound
	}

	candidate := slotFromInput(params.SlotID, params.Input)
	codes := schedule.Validate(candidate, day, slotTypes, conference.SessionTypes, conference.Rooms)
	if len(codes) > 0 {
		logger.InfoContext(ctx, "slot update rejected", "codes", codes)
		return SlotResult{Slot: candidate, ErrorCodes: codes}, nil
	}

	slots := make([]schedule.Slot, len(day.Slots))
	for i, slot := range day.Slots {
		if slot.ID == params.SlotID {
			slots[i] = candidate
		} else {
			slots[i] = slot
		}
	}
	if err := s.conferences.ReplaceDaySlots(ctx, params.ConferenceID, params.DayID, slots); err != nil {
		return SlotResult{}, mapStorageError(err)
	}

	logger.InfoContext(ctx, "slot updated")
	return SlotResult{Slot: candidate}, nil
}

// DeleteSlot removes a slot from its day. Allocations referencing the slot
// are released first so affected session statuses roll back.
func (s *PlanningService) DeleteSlot(ctx context.Context, params DeleteSlotParams) error {
	if s == nil {
		return fmt.Errorf("PlanningService is nil")
	}
	if params.Principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteSlot",
		"conference_id", params.ConferenceID,
		"day_id", params.DayID,
		"slot_id", params.SlotID,
	)

	_, day, _, err := s.loadDay(ctx, params.ConferenceID, params.DayID)
	if err != nil {
		return err
	}
	if _, ok := day.FindSlot(params.SlotID); !ok {
		return ErrNotFound
	}

	if s.releaser != nil {
		if err := s.releaser.ReleaseSlot(ctx, params.ConferenceID, params.DayID, params.SlotID); err != nil {
			return err
		}
	}

	slots := make([]schedule.Slot, 0, len(day.Slots)-1)
	for _, slot := range day.Slots {
		if slot.ID != params.SlotID {
			slots = append(slots, slot)
		}
	}
	if err := s.conferences.ReplaceDaySlots(ctx, params.ConferenceID, params.DayID, slots); err != nil {
		return mapStorageError(err)
	}

	logger.InfoContext(ctx, "slot deleted")
	return nil
}

// CopyDay copies the slot structure of one day onto another. Each copied slot
// gets a fresh identity; the batch acceptor drops the copies that do not fit
// the target day.
func (s *PlanningService) CopyDay(ctx context.Context, params CopyDayParams) (BatchSlotResult, error) {
	if s == nil {
		return BatchSlotResult{}, fmt.Errorf("PlanningService is nil")
	}
	if params.Principal.UserID == "" {
		return BatchSlotResult{}, ErrUnauthorized
	}
	if params.SourceDayID == params.TargetDayID {
		vErr := &ValidationError{}
		vErr.add("target_day_id", "target day must differ from source day")
		return BatchSlotResult{}, vErr
	}

	conference, source, slotTypes, err := s.loadDay(ctx, params.ConferenceID, params.SourceDayID)
	if err != nil {
		return BatchSlotResult{}, err
	}
	target, ok := findDay(conference, params.TargetDayID)
	if !ok {
		return BatchSlotResult{}, ErrNotFound
	}

	candidates := make([]schedule.Slot, len(source.Slots))
	for i, slot := range source.Slots {
		copied := slot
		copied.ID = s.idGenerator()
		candidates[i] = copied
	}

	return s.acceptBatch(ctx, params.ConferenceID, target, candidates, slotTypes, conference, "CopyDay")
}

// CopyRoom copies the slots of one room onto another room within the same
// day, retargeting each copy's room reference.
func (s *PlanningService) CopyRoom(ctx context.Context, params CopyRoomParams) (BatchSlotResult, error) {
	if s == nil {
		return BatchSlotResult{}, fmt.Errorf("PlanningService is nil")
	}
	if params.Principal.UserID == "" {
		return BatchSlotResult{}, ErrUnauthorized
	}
	if params.SourceRoomID == params.TargetRoomID {
		vErr := &ValidationError{}
		vErr.add("target_room_id", "target room must differ from source room")
		return BatchSlotResult{}, vErr
	}

	conference, day, slotTypes, err := s.loadDay(ctx, params.ConferenceID, params.DayID)
	if err != nil {
		return BatchSlotResult{}, err
	}
	if _, ok := schedule.FindRoom(conference.Rooms, params.TargetRoomID); !ok {
		return BatchSlotResult{}, ErrNotFound
	}

	var candidates []schedule.Slot
	for _, slot := range day.Slots {
		if slot.RoomID != params.SourceRoomID {
			continue
		}
		copied := slot
		copied.ID = s.idGenerator()
		copied.RoomID = params.TargetRoomID
		copied.OverflowRoomIDs = nil
		candidates = append(candidates, copied)
	}

	return s.acceptBatch(ctx, params.ConferenceID, day, candidates, slotTypes, conference, "CopyRoom")
}

// BulkCreateSlots expands a slot template into candidates and persists the
// subset the batch acceptor admits.
func (s *PlanningService) BulkCreateSlots(ctx context.Context, params BulkCreateSlotsParams) (BatchSlotResult, error) {
	if s == nil {
		return BatchSlotResult{}, fmt.Errorf("PlanningService is nil")
	}
	if params.Principal.UserID == "" {
		return BatchSlotResult{}, ErrUnauthorized
	}

	conference, day, slotTypes, err := s.loadDay(ctx, params.ConferenceID, params.DayID)
	if err != nil {
		return BatchSlotResult{}, err
	}

	generator := schedule.NewGenerator(s.idGenerator)
	candidates, err := generator.Expand(params.Template)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("template", err.Error())
		return BatchSlotResult{}, vErr
	}

	return s.acceptBatch(ctx, params.ConferenceID, day, candidates, slotTypes, conference, "BulkCreateSlots")
}

// acceptBatch funnels candidates through the batch acceptor and persists the
// target day with the accepted subset appended.
func (s *PlanningService) acceptBatch(ctx context.Context, conferenceID string, day schedule.Day, candidates []schedule.Slot, slotTypes []schedule.SlotType, conference persistence.Conference, operation string) (BatchSlotResult, error) {
	accepted := schedule.FilterCompatible(candidates, day, slotTypes, conference.SessionTypes, conference.Rooms)

	if len(accepted) > 0 {
		slots := append(append([]schedule.Slot{}, day.Slots...), accepted...)
		if err := s.conferences.ReplaceDaySlots(ctx, conferenceID, day.ID, slots); err != nil {
			return BatchSlotResult{}, mapStorageError(err)
		}
	}

	s.loggerWith(ctx, operation,
		"conference_id", conferenceID,
		"day_id", day.ID,
	).InfoContext(ctx, "batch slots accepted",
		"candidates", len(candidates),
		"accepted", len(accepted),
	)
	return BatchSlotResult{Accepted: accepted, Candidate: len(candidates)}, nil
}

// loadDay fetches a conference, its target day and the global slot types.
func (s *PlanningService) loadDay(ctx context.Context, conferenceID, dayID string) (persistence.Conference, schedule.Day, []schedule.SlotType, error) {
	if s.conferences == nil {
		return persistence.Conference{}, schedule.Day{}, nil, fmt.Errorf("conference store not configured")
	}

	conference, err := s.conferences.GetConference(ctx, conferenceID)
	if err != nil {
		return persistence.Conference{}, schedule.Day{}, nil, mapStorageError(err)
	}
	day, ok := findDay(conference, dayID)
	if !ok {
		return persistence.Conference{}, schedule.Day{}, nil, ErrNotFound
	}

	var slotTypes []schedule.SlotType
	if s.slotTypes != nil {
		slotTypes, err = s.slotTypes.ListSlotTypes(ctx)
		if err != nil {
			return persistence.Conference{}, schedule.Day{}, nil, mapStorageError(err)
		}
	}
	return conference, day, slotTypes, nil
}

func findDay(conference persistence.Conference, dayID string) (schedule.Day, bool) {
	for _, day := range conference.Days {
		if day.ID == dayID {
			return day, true
		}
	}
	return schedule.Day{}, false
}

func slotFromInput(id string, input SlotInput) schedule.Slot {
	return schedule.Slot{
		ID:              id,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Duration:        input.Duration,
		RoomID:          input.RoomID,
		SlotTypeID:      input.SlotTypeID,
		SessionTypeID:   input.SessionTypeID,
		OverflowRoomIDs: input.OverflowRoomIDs,
	}
}
