package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/conference-planner/internal/persistence"
	"github.com/example/conference-planner/internal/schedule"
)

var (
	userCounter       uint64
	conferenceCounter uint64
	sessionCounter    uint64
	speakerCounter    uint64
	allocationCounter uint64
)

var referenceTime = time.Date(2026, time.April, 7, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// DefaultSlotTypes returns the global slot type reference list most fixtures
// assume: one talk type and one break type.
func DefaultSlotTypes() []schedule.SlotType {
	return []schedule.SlotType{
		{ID: "slot-type-session", Label: "Session", IsSession: true},
		{ID: "slot-type-break", Label: "Break", IsSession: false},
	}
}

// ----------------------------- User fixtures -----------------------------

// UserOption configures the generated user fixture.
type UserOption func(*persistence.User)

// NewUserFixture returns a deterministic user record with optional overrides.
func NewUserFixture(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: fmt.Sprintf("User %03d", idx),
		IsAdmin:     false,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) {
		u.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) {
		u.Email = email
	}
}

// WithUserAdmin sets the admin flag on the generated user.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(u *persistence.User) {
		u.IsAdmin = isAdmin
	}
}

// -------------------------- Conference fixtures --------------------------

// ConferenceOption configures the generated conference fixture.
type ConferenceOption func(*persistence.Conference)

// NewConferenceFixture returns a two-day conference with two rooms, a session
// type and a track. Day one carries a morning session slot and a lunch break
// in the main room; day two starts empty.
func NewConferenceFixture(opts ...ConferenceOption) persistence.Conference {
	idx := atomic.AddUint64(&conferenceCounter, 1)
	id := fmt.Sprintf("conf-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)

	conference := persistence.Conference{
		ID:   id,
		Name: fmt.Sprintf("Conference %03d", idx),
		Days: []schedule.Day{
			{
				ID:        id + "-day-1",
				Date:      time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
				Index:     0,
				BeginTime: "09:00",
				EndTime:   "18:00",
				Slots: []schedule.Slot{
					{
						ID:            id + "-slot-1",
						StartTime:     "10:00",
						EndTime:       "10:40",
						Duration:      40,
						RoomID:        id + "-room-1",
						SlotTypeID:    "slot-type-session",
						SessionTypeID: id + "-stype-1",
					},
					{
						ID:         id + "-slot-2",
						StartTime:  "12:00",
						EndTime:    "13:00",
						Duration:   60,
						RoomID:     id + "-room-1",
						SlotTypeID: "slot-type-break",
					},
				},
			},
			{
				ID:        id + "-day-2",
				Date:      time.Date(2026, time.June, 2, 0, 0, 0, 0, time.UTC),
				Index:     1,
				BeginTime: "09:00",
				EndTime:   "18:00",
			},
		},
		Rooms: []schedule.Room{
			{ID: id + "-room-1", Name: "Main Hall", Capacity: 300, IsSessionRoom: true},
			{ID: id + "-room-2", Name: "Workshop Room", Capacity: 60, IsSessionRoom: true},
		},
		SessionTypes: []schedule.SessionType{
			{ID: id + "-stype-1", Name: "Regular Talk", Duration: 40, MaxSpeakers: 3},
		},
		Tracks: []schedule.Track{
			{ID: id + "-track-1", Name: "General", Color: "#3366cc"},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&conference)
	}
	return conference
}

// WithConferenceID overrides the generated conference ID.
func WithConferenceID(id string) ConferenceOption {
	return func(c *persistence.Conference) {
		c.ID = id
	}
}

// WithConferenceDays replaces the generated day list.
func WithConferenceDays(days ...schedule.Day) ConferenceOption {
	return func(c *persistence.Conference) {
		c.Days = days
	}
}

// WithConferenceRooms replaces the generated room list.
func WithConferenceRooms(rooms ...schedule.Room) ConferenceOption {
	return func(c *persistence.Conference) {
		c.Rooms = rooms
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionOption configures the generated session fixture.
type SessionOption func(*persistence.Session)

// NewSessionFixture returns an accepted session proposal for the given
// conference with a single speaker.
func NewSessionFixture(conferenceID string, opts ...SessionOption) persistence.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	session := persistence.Session{
		ID:           id,
		ConferenceID: conferenceID,
		Title:        fmt.Sprintf("Talk %03d", idx),
		Speaker1ID:   fmt.Sprintf("person-%03d", idx),
		Submission: &persistence.Submission{
			Status:        "ACCEPTED",
			SessionTypeID: conferenceID + "-stype-1",
			TrackID:       conferenceID + "-track-1",
			ReviewAverage: 4.0,
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(s *persistence.Session) {
		s.ID = id
	}
}

// WithSessionStatus overrides the submission status.
func WithSessionStatus(status string) SessionOption {
	return func(s *persistence.Session) {
		if s.Submission != nil {
			s.Submission.Status = status
		}
	}
}

// WithSessionSpeakers replaces the speaker references. Up to three are used.
func WithSessionSpeakers(ids ...string) SessionOption {
	return func(s *persistence.Session) {
		s.Speaker1ID, s.Speaker2ID, s.Speaker3ID = "", "", ""
		if len(ids) > 0 {
			s.Speaker1ID = ids[0]
		}
		if len(ids) > 1 {
			s.Speaker2ID = ids[1]
		}
		if len(ids) > 2 {
			s.Speaker3ID = ids[2]
		}
	}
}

// WithoutSubmission removes the submission sub-record.
func WithoutSubmission() SessionOption {
	return func(s *persistence.Session) {
		s.Submission = nil
	}
}

// ---------------------------- Speaker fixtures ----------------------------

// SpeakerOption configures the generated speaker fixture.
type SpeakerOption func(*persistence.ConferenceSpeaker)

// NewSpeakerFixture returns a speaker participation record for the given
// conference with no availability blacklist.
func NewSpeakerFixture(conferenceID string, opts ...SpeakerOption) persistence.ConferenceSpeaker {
	idx := atomic.AddUint64(&speakerCounter, 1)
	speaker := persistence.ConferenceSpeaker{
		ConferenceID: conferenceID,
		PersonID:     fmt.Sprintf("person-%03d", idx),
		DisplayName:  fmt.Sprintf("Speaker %03d", idx),
	}
	for _, opt := range opts {
		opt(&speaker)
	}
	return speaker
}

// WithSpeakerPersonID overrides the generated person ID.
func WithSpeakerPersonID(id string) SpeakerOption {
	return func(s *persistence.ConferenceSpeaker) {
		s.PersonID = id
	}
}

// WithSpeakerUnavailableSlots sets the availability blacklist.
func WithSpeakerUnavailableSlots(slotIDs ...string) SpeakerOption {
	return func(s *persistence.ConferenceSpeaker) {
		s.UnavailableSlotIDs = slotIDs
	}
}

// WithSpeakerSessions sets the sessions the speaker presents.
func WithSpeakerSessions(sessionIDs ...string) SpeakerOption {
	return func(s *persistence.ConferenceSpeaker) {
		s.SessionIDs = sessionIDs
	}
}

// -------------------------- Allocation fixtures --------------------------

// NewAllocationFixture returns an allocation binding the session to the given
// placement triple.
func NewAllocationFixture(conferenceID, dayID, slotID, roomID, sessionID string) persistence.SessionAllocation {
	idx := atomic.AddUint64(&allocationCounter, 1)
	return persistence.SessionAllocation{
		ID:           fmt.Sprintf("alloc-%03d", idx),
		ConferenceID: conferenceID,
		DayID:        dayID,
		SlotID:       slotID,
		RoomID:       roomID,
		SessionID:    sessionID,
		LastUpdated:  referenceTime.Add(time.Duration(idx) * time.Second),
	}
}
