package persistence

import (
	"context"
	"time"

	"github.com/example/conference-planner/internal/schedule"
)

// ConferenceRepository stores conference planning structures.
type ConferenceRepository interface {
	CreateConference(ctx context.Context, conference Conference) error
	GetConference(ctx context.Context, id string) (Conference, error)
	ListConferences(ctx context.Context) ([]Conference, error)
	// ReplaceDaySlots overwrites the slot list of one day in a single
	// transaction. Slot edits, bulk creation and copies persist their
	// accepted subset through this call.
	ReplaceDaySlots(ctx context.Context, conferenceID, dayID string, slots []schedule.Slot) error
}

// SlotTypeRepository stores the global slot type reference list.
type SlotTypeRepository interface {
	UpsertSlotType(ctx context.Context, slotType schedule.SlotType) error
	ListSlotTypes(ctx context.Context) ([]schedule.SlotType, error)
}

// SessionRepository stores proposed talks and their submission state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, conferenceID string) ([]Session, error)
	UpdateSessionStatus(ctx context.Context, id string, status string) error
	DeleteSession(ctx context.Context, id string) error
}

// AllocationRepository stores session-to-slot assignments. Put and delete
// operations are each a single atomic transaction so concurrent editors can
// never produce two rows for one triple or one session.
type AllocationRepository interface {
	// PutAllocation inserts the allocation after removing, in the same
	// transaction, any existing row for the same (day, slot, room) triple and
	// any existing row for the same session. The displaced rows are returned
	// so callers can compensate session statuses.
	PutAllocation(ctx context.Context, alloc SessionAllocation) ([]SessionAllocation, error)
	GetAllocation(ctx context.Context, id string) (SessionAllocation, error)
	ListAllocations(ctx context.Context, conferenceID string) ([]SessionAllocation, error)
	ListAllocationsForSession(ctx context.Context, sessionID string) ([]SessionAllocation, error)
	DeleteAllocation(ctx context.Context, id string) error
	DeleteAllocations(ctx context.Context, ids []string) error
}

// SpeakerRepository stores per-conference speaker participation records.
type SpeakerRepository interface {
	UpsertSpeaker(ctx context.Context, speaker ConferenceSpeaker) error
	GetSpeaker(ctx context.Context, conferenceID, personID string) (ConferenceSpeaker, error)
	ListSpeakers(ctx context.Context, conferenceID string) ([]ConferenceSpeaker, error)
	ReplaceUnavailableSlots(ctx context.Context, conferenceID, personID string, slotIDs []string) error
}

// UserRepository stores organizer accounts and credentials.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
	RecordFailedAttempt(ctx context.Context, userID string, at time.Time) error
	ResetFailedAttempts(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AuthSessionRepository stores authentication session state.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetAuthSession(ctx context.Context, token string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error
}
