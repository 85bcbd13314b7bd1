package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/conference-planner/internal/allocation"
	"github.com/example/conference-planner/internal/persistence"
	"github.com/example/conference-planner/internal/schedule"
)

// SessionStore captures the session persistence operations needed by the
// allocation and session services.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (persistence.Session, error)
	ListSessions(ctx context.Context, conferenceID string) ([]persistence.Session, error)
	UpdateSessionStatus(ctx context.Context, id string, status string) error
}

// AllocationStore captures the allocation persistence operations.
type AllocationStore interface {
	PutAllocation(ctx context.Context, alloc persistence.SessionAllocation) ([]persistence.SessionAllocation, error)
	GetAllocation(ctx context.Context, id string) (persistence.SessionAllocation, error)
	ListAllocations(ctx context.Context, conferenceID string) ([]persistence.SessionAllocation, error)
	ListAllocationsForSession(ctx context.Context, sessionID string) ([]persistence.SessionAllocation, error)
	DeleteAllocation(ctx context.Context, id string) error
	DeleteAllocations(ctx context.Context, ids []string) error
}

// SpeakerStore exposes the speaker participation records of a conference.
type SpeakerStore interface {
	ListSpeakers(ctx context.Context, conferenceID string) ([]persistence.ConferenceSpeaker, error)
}

// speakerCacheTTL bounds how stale the cached speaker records used for
// conflict checks may be. Availability edits are rare compared to allocation
// traffic, so a short window trades a little staleness for far fewer reads.
const speakerCacheTTL = 30 * time.Second

const speakerCacheSize = 64

// AllocationService owns the session-to-slot assignment lifecycle: assigning
// a session to a (day, slot, room) triple, clearing assignments, and keeping
// submission statuses in step with placement. A session gains SCHEDULED or
// PROGRAMMED when placed and falls back to ACCEPTED or SPEAKER_CONFIRMED when
// it loses its last placement.
type AllocationService struct {
	conferences  ConferenceStore
	slotTypes    SlotTypeStore
	sessions     SessionStore
	allocations  AllocationStore
	speakers     SpeakerStore
	speakerCache *expirable.LRU[string, []persistence.ConferenceSpeaker]
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewAllocationService constructs an allocation service with the provided dependencies.
func NewAllocationService(conferences ConferenceStore, slotTypes SlotTypeStore, sessions SessionStore, allocations AllocationStore, speakers SpeakerStore, idGenerator func() string, now func() time.Time) *AllocationService {
	return NewAllocationServiceWithLogger(conferences, slotTypes, sessions, allocations, speakers, idGenerator, now, nil)
}

// NewAllocationServiceWithLogger constructs an allocation service with a specified logger.
func NewAllocationServiceWithLogger(conferences ConferenceStore, slotTypes SlotTypeStore, sessions SessionStore, allocations AllocationStore, speakers SpeakerStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AllocationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AllocationService{
		conferences:  conferences,
		slotTypes:    slotTypes,
		sessions:     sessions,
		allocations:  allocations,
		speakers:     speakers,
		speakerCache: expirable.NewLRU[string, []persistence.ConferenceSpeaker](speakerCacheSize, nil, speakerCacheTTL),
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *AllocationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AllocationService", operation, attrs...)
}

// ListAllocations returns every allocation of a conference.
func (s *AllocationService) ListAllocations(ctx context.Context, principal Principal, conferenceID string) ([]persistence.SessionAllocation, error) {
	if s == nil {
		return nil, fmt.Errorf("AllocationService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	allocations, err := s.allocations.ListAllocations(ctx, conferenceID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return allocations, nil
}

// Assign places a session on a (day, slot, room) triple. The target slot must
// host sessions, the room must be the slot's room or one of its overflow
// rooms, and the session's type must match the slot's. A speaker blacklisted
// for the slot refuses the assignment with a SpeakerConflictError. Assigning
// a session that already holds exactly this triple is a no-op; any other
// occupant of the triple, and any other placement of this session, is
// displaced in the same transaction and its status rolled back.
func (s *AllocationService) Assign(ctx context.Context, params AssignParams) (alloc persistence.SessionAllocation, err error) {
	if s == nil {
		err = fmt.Errorf("AllocationService is nil")
		return
	}
	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "Assign",
		"conference_id", params.ConferenceID,
		"day_id", params.DayID,
		"slot_id", params.SlotID,
		"room_id", params.RoomID,
		"session_id", params.SessionID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "assignment failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session assigned", "allocation_id", alloc.ID)
	}()

	vErr := &ValidationError{}
	if params.ConferenceID == "" {
		vErr.add("conference_id", "conference id is required")
	}
	if params.DayID == "" {
		vErr.add("day_id", "day id is required")
	}
	if params.SlotID == "" {
		vErr.add("slot_id", "slot id is required")
	}
	if params.RoomID == "" {
		vErr.add("room_id", "room id is required")
	}
	if params.SessionID == "" {
		vErr.add("session_id", "session id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	conference, day, slot, err := s.loadSlot(ctx, params.ConferenceID, params.DayID, params.SlotID)
	if err != nil {
		return
	}
	if err = s.checkSlotHostsSessions(ctx, slot); err != nil {
		return
	}
	if err = checkRoomAllowed(conference, day, slot, params.RoomID); err != nil {
		return
	}

	session, err := s.loadAllocatableSession(ctx, params.ConferenceID, params.SessionID, slot)
	if err != nil {
		return
	}

	if err = s.checkSpeakerAvailability(ctx, conference, session, slot.ID); err != nil {
		return
	}

	// Re-assigning the same triple is idempotent.
	existing, err := s.allocations.ListAllocationsForSession(ctx, params.SessionID)
	if err != nil {
		err = mapStorageError(err)
		return
	}
	for _, held := range existing {
		if held.DayID == params.DayID && held.SlotID == params.SlotID && held.RoomID == params.RoomID {
			alloc = held
			return
		}
	}

	alloc = persistence.SessionAllocation{
		ID:           s.idGenerator(),
		ConferenceID: params.ConferenceID,
		DayID:        params.DayID,
		SlotID:       params.SlotID,
		RoomID:       params.RoomID,
		SessionID:    params.SessionID,
		LastUpdated:  s.now(),
	}

	displaced, err := s.allocations.PutAllocation(ctx, alloc)
	if err != nil {
		err = mapStorageError(err)
		return
	}

	for _, old := range displaced {
		if old.SessionID == params.SessionID {
			continue
		}
		if rbErr := s.rollbackStatus(ctx, old.SessionID, nil); rbErr != nil {
			logger.ErrorContext(ctx, "status rollback failed",
				"displaced_session_id", old.SessionID, "error", rbErr)
		}
	}

	if session.Submission != nil {
		status := allocation.Status(session.Submission.Status)
		if advanced, ok := status.Advanced(); ok {
			if upErr := s.sessions.UpdateSessionStatus(ctx, session.ID, string(advanced)); upErr != nil {
				err = mapStorageError(upErr)
				return
			}
		}
	}
	return
}

// Clear removes one allocation. When the session holds no other placement its
// status rolls back to the pre-placement value.
func (s *AllocationService) Clear(ctx context.Context, principal Principal, allocationID string) error {
	if s == nil {
		return fmt.Errorf("AllocationService is nil")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "Clear", "allocation_id", allocationID)

	alloc, err := s.allocations.GetAllocation(ctx, allocationID)
	if err != nil {
		return mapStorageError(err)
	}
	if err := s.allocations.DeleteAllocation(ctx, allocationID); err != nil {
		return mapStorageError(err)
	}
	if err := s.rollbackStatus(ctx, alloc.SessionID, map[string]bool{allocationID: true}); err != nil {
		return err
	}

	logger.InfoContext(ctx, "allocation cleared", "session_id", alloc.SessionID)
	return nil
}

// ClearMany removes a batch of allocations atomically, then rolls back the
// status of every session left without a placement.
func (s *AllocationService) ClearMany(ctx context.Context, params ClearManyParams) error {
	if s == nil {
		return fmt.Errorf("AllocationService is nil")
	}
	if params.Principal.UserID == "" {
		return ErrUnauthorized
	}
	return s.clearBatch(ctx, params.AllocationIDs)
}

// ReleaseSlot clears every allocation referencing one slot, in any room. The
// planning service calls this before deleting the slot.
func (s *AllocationService) ReleaseSlot(ctx context.Context, conferenceID, dayID, slotID string) error {
	if s == nil {
		return fmt.Errorf("AllocationService is nil")
	}

	allocations, err := s.allocations.ListAllocations(ctx, conferenceID)
	if err != nil {
		return mapStorageError(err)
	}

	var ids []string
	for _, alloc := range allocations {
		if alloc.DayID == dayID && alloc.SlotID == slotID {
			ids = append(ids, alloc.ID)
		}
	}
	return s.clearBatch(ctx, ids)
}

func (s *AllocationService) clearBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	removed := make(map[string]bool, len(ids))
	sessionIDs := make(map[string]bool)
	for _, id := range ids {
		alloc, err := s.allocations.GetAllocation(ctx, id)
		if err != nil {
			return mapStorageError(err)
		}
		removed[id] = true
		sessionIDs[alloc.SessionID] = true
	}

	if err := s.allocations.DeleteAllocations(ctx, ids); err != nil {
		return mapStorageError(err)
	}

	for sessionID := range sessionIDs {
		if err := s.rollbackStatus(ctx, sessionID, removed); err != nil {
			return err
		}
	}
	return nil
}

// rollbackStatus reverts a session's status to its pre-placement value when
// no allocation outside the removed set still references it.
func (s *AllocationService) rollbackStatus(ctx context.Context, sessionID string, removed map[string]bool) error {
	remaining, err := s.allocations.ListAllocationsForSession(ctx, sessionID)
	if err != nil {
		return mapStorageError(err)
	}
	for _, alloc := range remaining {
		if !removed[alloc.ID] {
			return nil
		}
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return mapStorageError(err)
	}
	if session.Submission == nil {
		return nil
	}

	status := allocation.Status(session.Submission.Status)
	rolledBack, ok := status.RolledBack()
	if !ok {
		return nil
	}
	if err := s.sessions.UpdateSessionStatus(ctx, sessionID, string(rolledBack)); err != nil {
		return mapStorageError(err)
	}
	return nil
}

func (s *AllocationService) loadSlot(ctx context.Context, conferenceID, dayID, slotID string) (persistence.Conference, schedule.Day, schedule.Slot, error) {
	conference, err := s.conferences.GetConference(ctx, conferenceID)
	if err != nil {
		return persistence.Conference{}, schedule.Day{}, schedule.Slot{}, mapStorageError(err)
	}
	day, ok := findDay(conference, dayID)
	if !ok {
		return persistence.Conference{}, schedule.Day{}, schedule.Slot{}, ErrNotFound
	}
	slot, ok := day.FindSlot(slotID)
	if !ok {
		return persistence.Conference{}, schedule.Day{}, schedule.Slot{}, ErrNotFound
	}
	return conference, day, slot, nil
}

func (s *AllocationService) checkSlotHostsSessions(ctx context.Context, slot schedule.Slot) error {
	if s.slotTypes == nil {
		return nil
	}
	slotTypes, err := s.slotTypes.ListSlotTypes(ctx)
	if err != nil {
		return mapStorageError(err)
	}
	slotType, ok := schedule.FindSlotType(slotTypes, slot.SlotTypeID)
	if !ok || !slotType.IsSession {
		vErr := &ValidationError{}
		vErr.add("slot_id", "slot does not host sessions")
		return vErr
	}
	return nil
}

func checkRoomAllowed(conference persistence.Conference, day schedule.Day, slot schedule.Slot, roomID string) error {
	vErr := &ValidationError{}
	if _, ok := schedule.FindRoom(conference.Rooms, roomID); !ok {
		vErr.add("room_id", "room does not exist")
		return vErr
	}
	if day.RoomDisabled(roomID) {
		vErr.add("room_id", "room is disabled for this day")
		return vErr
	}

	allowed := slot.RoomID == roomID
	for _, overflow := range slot.OverflowRoomIDs {
		if overflow == roomID {
			allowed = true
		}
	}
	if !allowed {
		vErr.add("room_id", "room is not served by this slot")
		return vErr
	}
	return nil
}

func (s *AllocationService) loadAllocatableSession(ctx context.Context, conferenceID, sessionID string, slot schedule.Slot) (persistence.Session, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return persistence.Session{}, mapStorageError(err)
	}
	if session.ConferenceID != conferenceID {
		return persistence.Session{}, ErrNotFound
	}

	vErr := &ValidationError{}
	if session.Submission == nil {
		vErr.add("session_id", "session was not submitted to this conference")
		return persistence.Session{}, vErr
	}

	status := allocation.Status(session.Submission.Status)
	if _, advanced := status.RolledBack(); !status.Eligible() && !advanced {
		vErr.add("session_id", "session status does not allow allocation")
		return persistence.Session{}, vErr
	}
	if session.Submission.SessionTypeID != slot.SessionTypeID {
		vErr.add("session_id", "session type does not match the slot")
		return persistence.Session{}, vErr
	}
	return session, nil
}

// checkSpeakerAvailability refuses the assignment when any speaker of the
// session blacklisted the target slot, reporting the time ranges where each
// conflicting speaker remains available.
func (s *AllocationService) checkSpeakerAvailability(ctx context.Context, conference persistence.Conference, session persistence.Session, slotID string) error {
	speakers, err := s.conferenceSpeakers(ctx, conference.ID)
	if err != nil {
		return err
	}

	byPerson := make(map[string]persistence.ConferenceSpeaker, len(speakers))
	for _, speaker := range speakers {
		byPerson[speaker.PersonID] = speaker
	}

	var conflicts []SpeakerConflict
	for _, personID := range session.SpeakerIDs() {
		speaker, ok := byPerson[personID]
		if !ok {
			continue
		}
		blacklisted := false
		for _, unavailable := range speaker.UnavailableSlotIDs {
			if unavailable == slotID {
				blacklisted = true
				break
			}
		}
		if !blacklisted {
			continue
		}

		label := speaker.DisplayName
		if label == "" {
			label = personID
		}
		conflicts = append(conflicts, SpeakerConflict{
			SpeakerLabel:        label,
			AvailableTimeRanges: s.availableTimeRanges(ctx, conference, speaker),
		})
	}

	if len(conflicts) > 0 {
		return &SpeakerConflictError{Conflicts: conflicts}
	}
	return nil
}

// conferenceSpeakers returns the speaker records for a conference through a
// short-lived cache.
func (s *AllocationService) conferenceSpeakers(ctx context.Context, conferenceID string) ([]persistence.ConferenceSpeaker, error) {
	if s.speakers == nil {
		return nil, nil
	}
	if s.speakerCache != nil {
		if cached, ok := s.speakerCache.Get(conferenceID); ok {
			return cached, nil
		}
	}

	speakers, err := s.speakers.ListSpeakers(ctx, conferenceID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if s.speakerCache != nil {
		s.speakerCache.Add(conferenceID, speakers)
	}
	return speakers, nil
}

// InvalidateSpeakers drops the cached speaker records of a conference. The
// speaker service calls this after availability edits.
func (s *AllocationService) InvalidateSpeakers(conferenceID string) {
	if s == nil || s.speakerCache == nil {
		return
	}
	s.speakerCache.Remove(conferenceID)
}

// availableTimeRanges lists the distinct session-slot time ranges the speaker
// did not blacklist, ordered by day then start time.
func (s *AllocationService) availableTimeRanges(ctx context.Context, conference persistence.Conference, speaker persistence.ConferenceSpeaker) []TimeRange {
	unavailable := make(map[string]bool, len(speaker.UnavailableSlotIDs))
	for _, slotID := range speaker.UnavailableSlotIDs {
		unavailable[slotID] = true
	}

	var slotTypes []schedule.SlotType
	if s.slotTypes != nil {
		if listed, err := s.slotTypes.ListSlotTypes(ctx); err == nil {
			slotTypes = listed
		}
	}

	dayOrder := make(map[string]int, len(conference.Days))
	seen := make(map[string]bool)
	var ranges []TimeRange
	for i, day := range conference.Days {
		dayOrder[day.ID] = i
		for _, slot := range day.Slots {
			if unavailable[slot.ID] {
				continue
			}
			if slotType, ok := schedule.FindSlotType(slotTypes, slot.SlotTypeID); !ok || !slotType.IsSession {
				continue
			}
			key := day.ID + "::" + slot.StartTime + "::" + slot.EndTime
			if seen[key] {
				continue
			}
			seen[key] = true
			ranges = append(ranges, TimeRange{DayID: day.ID, Start: slot.StartTime, End: slot.EndTime})
		}
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].DayID != ranges[j].DayID {
			return dayOrder[ranges[i].DayID] < dayOrder[ranges[j].DayID]
		}
		return ranges[i].Start < ranges[j].Start
	})
	return ranges
}
