package persistence

import (
	"time"

	"github.com/example/conference-planner/internal/schedule"
)

// Conference aggregates the planning structure of one event: days with their
// slots, rooms, session types and tracks.
type Conference struct {
	ID           string
	Name         string
	Days         []schedule.Day
	Rooms        []schedule.Room
	SessionTypes []schedule.SessionType
	Tracks       []schedule.Track
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Submission is the per-conference sub-record of a session. A session without
// a submission has not been proposed to the conference and is out of scope
// for allocation.
type Submission struct {
	Status        string
	SessionTypeID string
	TrackID       string
	ReviewAverage float64
}

// Session represents a proposed talk with up to three distinct speakers.
type Session struct {
	ID           string
	ConferenceID string
	Title        string
	Speaker1ID   string
	Speaker2ID   string
	Speaker3ID   string
	Submission   *Submission
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SpeakerIDs returns the distinct non-empty speaker references in order.
func (s Session) SpeakerIDs() []string {
	var ids []string
	for _, id := range []string{s.Speaker1ID, s.Speaker2ID, s.Speaker3ID} {
		if id == "" {
			continue
		}
		seen := false
		for _, existing := range ids {
			if existing == id {
				seen = true
				break
			}
		}
		if !seen {
			ids = append(ids, id)
		}
	}
	return ids
}

// SessionAllocation assigns one session to one (day, slot, room) triple.
// At most one allocation exists per triple and per session at any time; a
// cleared slot simply has no allocation row.
type SessionAllocation struct {
	ID           string
	ConferenceID string
	DayID        string
	SlotID       string
	RoomID       string
	SessionID    string
	LastUpdated  time.Time
}

// ConferenceSpeaker is one person's participation record for a conference:
// the sessions they speak at and the slots they cannot attend.
type ConferenceSpeaker struct {
	ConferenceID       string
	PersonID           string
	DisplayName        string
	UnavailableSlotIDs []string
	SessionIDs         []string
}

// User represents an organizer account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials carries the authentication attributes stored for a user.
type UserCredentials struct {
	User           User
	PasswordHash   string
	Disabled       bool
	FailedAttempts int
	LastFailedAt   *time.Time
}

// AuthSession represents an authentication session persisted for a user.
type AuthSession struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
