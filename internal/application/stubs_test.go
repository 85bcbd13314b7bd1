package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/conference-planner/internal/persistence"
	"github.com/example/conference-planner/internal/schedule"
)

// memStore is an in-memory implementation of the persistence facing
// interfaces the services consume. A non-nil failWith short-circuits every
// call with that error so storage failure paths can be exercised.
type memStore struct {
	conferences map[string]persistence.Conference
	slotTypes   []schedule.SlotType
	sessions    map[string]persistence.Session
	allocations map[string]persistence.SessionAllocation
	speakers    map[string][]persistence.ConferenceSpeaker

	replacedDays     []string
	statusUpdates    map[string][]string
	listSpeakerCalls int
	failWith         error
}

func newMemStore() *memStore {
	return &memStore{
		conferences:   make(map[string]persistence.Conference),
		sessions:      make(map[string]persistence.Session),
		allocations:   make(map[string]persistence.SessionAllocation),
		speakers:      make(map[string][]persistence.ConferenceSpeaker),
		statusUpdates: make(map[string][]string),
	}
}

func (m *memStore) addConference(conference persistence.Conference) {
	m.conferences[conference.ID] = conference
}

func (m *memStore) addSession(session persistence.Session) {
	m.sessions[session.ID] = session
}

func (m *memStore) addAllocation(alloc persistence.SessionAllocation) {
	m.allocations[alloc.ID] = alloc
}

func (m *memStore) GetConference(ctx context.Context, id string) (persistence.Conference, error) {
	if m.failWith != nil {
		return persistence.Conference{}, m.failWith
	}
	conference, ok := m.conferences[id]
	if !ok {
		return persistence.Conference{}, persistence.ErrNotFound
	}
	return conference, nil
}

func (m *memStore) ListConferences(ctx context.Context) ([]persistence.Conference, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]persistence.Conference, 0, len(m.conferences))
	for _, conference := range m.conferences {
		out = append(out, conference)
	}
	return out, nil
}

func (m *memStore) ReplaceDaySlots(ctx context.Context, conferenceID, dayID string, slots []schedule.Slot) error {
	if m.failWith != nil {
		return m.failWith
	}
	conference, ok := m.conferences[conferenceID]
	if !ok {
		return persistence.ErrNotFound
	}
	for i, day := range conference.Days {
		if day.ID == dayID {
			conference.Days[i].Slots = slots
			m.conferences[conferenceID] = conference
			m.replacedDays = append(m.replacedDays, dayID)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (m *memStore) ListSlotTypes(ctx context.Context) ([]schedule.SlotType, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.slotTypes, nil
}

func (m *memStore) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	if m.failWith != nil {
		return persistence.Session{}, m.failWith
	}
	session, ok := m.sessions[id]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (m *memStore) ListSessions(ctx context.Context, conferenceID string) ([]persistence.Session, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []persistence.Session
	for _, session := range m.sessions {
		if session.ConferenceID == conferenceID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateSessionStatus(ctx context.Context, id string, status string) error {
	if m.failWith != nil {
		return m.failWith
	}
	session, ok := m.sessions[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if session.Submission == nil {
		return persistence.ErrConstraintViolation
	}
	submission := *session.Submission
	submission.Status = status
	session.Submission = &submission
	m.sessions[id] = session
	m.statusUpdates[id] = append(m.statusUpdates[id], status)
	return nil
}

func (m *memStore) PutAllocation(ctx context.Context, alloc persistence.SessionAllocation) ([]persistence.SessionAllocation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var displaced []persistence.SessionAllocation
	for id, existing := range m.allocations {
		sameTriple := existing.DayID == alloc.DayID && existing.SlotID == alloc.SlotID && existing.RoomID == alloc.RoomID
		if sameTriple || existing.SessionID == alloc.SessionID {
			displaced = append(displaced, existing)
			delete(m.allocations, id)
		}
	}
	m.allocations[alloc.ID] = alloc
	return displaced, nil
}

func (m *memStore) GetAllocation(ctx context.Context, id string) (persistence.SessionAllocation, error) {
	if m.failWith != nil {
		return persistence.SessionAllocation{}, m.failWith
	}
	alloc, ok := m.allocations[id]
	if !ok {
		return persistence.SessionAllocation{}, persistence.ErrNotFound
	}
	return alloc, nil
}

func (m *memStore) ListAllocations(ctx context.Context, conferenceID string) ([]persistence.SessionAllocation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []persistence.SessionAllocation
	for _, alloc := range m.allocations {
		if alloc.ConferenceID == conferenceID {
			out = append(out, alloc)
		}
	}
	return out, nil
}

func (m *memStore) ListAllocationsForSession(ctx context.Context, sessionID string) ([]persistence.SessionAllocation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []persistence.SessionAllocation
	for _, alloc := range m.allocations {
		if alloc.SessionID == sessionID {
			out = append(out, alloc)
		}
	}
	return out, nil
}

func (m *memStore) DeleteAllocation(ctx context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.allocations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.allocations, id)
	return nil
}

func (m *memStore) DeleteAllocations(ctx context.Context, ids []string) error {
	if m.failWith != nil {
		return m.failWith
	}
	for _, id := range ids {
		if _, ok := m.allocations[id]; !ok {
			return persistence.ErrNotFound
		}
	}
	for _, id := range ids {
		delete(m.allocations, id)
	}
	return nil
}

func (m *memStore) ListSpeakers(ctx context.Context, conferenceID string) ([]persistence.ConferenceSpeaker, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.listSpeakerCalls++
	return m.speakers[conferenceID], nil
}

func (m *memStore) GetSpeaker(ctx context.Context, conferenceID, personID string) (persistence.ConferenceSpeaker, error) {
	if m.failWith != nil {
		return persistence.ConferenceSpeaker{}, m.failWith
	}
	for _, speaker := range m.speakers[conferenceID] {
		if speaker.PersonID == personID {
			return speaker, nil
		}
	}
	return persistence.ConferenceSpeaker{}, persistence.ErrNotFound
}

func (m *memStore) ReplaceUnavailableSlots(ctx context.Context, conferenceID, personID string, slotIDs []string) error {
	if m.failWith != nil {
		return m.failWith
	}
	speakers := m.speakers[conferenceID]
	for i, speaker := range speakers {
		if speaker.PersonID == personID {
			speakers[i].UnavailableSlotIDs = slotIDs
			return nil
		}
	}
	return persistence.ErrNotFound
}

// fixedClock returns a frozen now func for deterministic timestamps.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

var organizer = Principal{UserID: "user-1"}
var admin = Principal{UserID: "admin-1", IsAdmin: true}

func planningConference() persistence.Conference {
	return persistence.Conference{
		ID:   "conf-1",
		Name: "GopherConf",
		Days: []schedule.Day{
			{
				ID:        "day-1",
				Date:      time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
				Index:     0,
				BeginTime: "09:00",
				EndTime:   "18:00",
				Slots: []schedule.Slot{
					{
						ID: "slot-1", StartTime: "10:00", EndTime: "10:40", Duration: 40,
						RoomID: "room-1", SlotTypeID: "st-session", SessionTypeID: "talk-40",
					},
				},
			},
			{
				ID:        "day-2",
				Date:      time.Date(2026, time.June, 2, 0, 0, 0, 0, time.UTC),
				Index:     1,
				BeginTime: "09:00",
				EndTime:   "18:00",
			},
		},
		Rooms: []schedule.Room{
			{ID: "room-1", Name: "Main Hall", Capacity: 300, IsSessionRoom: true},
			{ID: "room-2", Name: "Side Room", Capacity: 100, IsSessionRoom: true},
		},
		SessionTypes: []schedule.SessionType{
			{ID: "talk-40", Name: "Regular Talk", Duration: 40, MaxSpeakers: 3},
		},
		Tracks: []schedule.Track{
			{ID: "track-1", Name: "General"},
		},
	}
}

func defaultSlotTypes() []schedule.SlotType {
	return []schedule.SlotType{
		{ID: "st-session", Label: "Session", IsSession: true},
		{ID: "st-break", Label: "Break", IsSession: false},
	}
}

func acceptedSession(id string) persistence.Session {
	return persistence.Session{
		ID:           id,
		ConferenceID: "conf-1",
		Title:        "A Talk",
		Speaker1ID:   "person-1",
		Submission: &persistence.Submission{
			Status:        "ACCEPTED",
			SessionTypeID: "talk-40",
			TrackID:       "track-1",
			ReviewAverage: 4.2,
		},
	}
}
