package application

import (
	"github.com/example/conference-planner/internal/allocation"
	"github.com/example/conference-planner/internal/schedule"
)

// Principal represents the authenticated organizer invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// TimeRange is one HH:mm clock range within a conference day.
type TimeRange struct {
	DayID string
	Start string
	End   string
}

// SpeakerConflict names a speaker who cannot attend the requested slot and
// the session-slot time ranges where they remain available.
type SpeakerConflict struct {
	SpeakerLabel        string
	AvailableTimeRanges []TimeRange
}

// SlotInput captures caller provided slot fields for create and update.
type SlotInput struct {
	StartTime       string
	EndTime         string
	Duration        int
	RoomID          string
	SlotTypeID      string
	SessionTypeID   string
	OverflowRoomIDs []string
}

// ValidateSlotParams wraps a dry-run slot validation request.
type ValidateSlotParams struct {
	Principal    Principal
	ConferenceID string
	DayID        string
	SlotID       string
	Input        SlotInput
}

// CreateSlotParams wraps the data required to create a slot.
type CreateSlotParams struct {
	Principal    Principal
	ConferenceID string
	DayID        string
	Input        SlotInput
}

// UpdateSlotParams wraps the data required to update an existing slot.
type UpdateSlotParams struct {
	Principal    Principal
	ConferenceID string
	DayID        string
	SlotID       string
	Input        SlotInput
}

// DeleteSlotParams wraps the data required to delete a slot.
type DeleteSlotParams struct {
	Principal    Principal
	ConferenceID string
	DayID        string
	SlotID       string
}

// SlotResult reports the outcome of a slot mutation: either the persisted
// slot, or the structural error codes that blocked it.
type SlotResult struct {
	Slot       schedule.Slot
	ErrorCodes []schedule.ErrorCode
}

// Accepted reports whether the mutation went through.
func (r SlotResult) Accepted() bool {
	return len(r.ErrorCodes) == 0
}

// CopyDayParams wraps a day-to-day slot copy request.
type CopyDayParams struct {
	Principal    Principal
	ConferenceID string
	SourceDayID  string
	TargetDayID  string
}

// CopyRoomParams wraps a room-to-room slot copy within one day.
type CopyRoomParams struct {
	Principal    Principal
	ConferenceID string
	DayID        string
	SourceRoomID string
	TargetRoomID string
}

// BulkCreateSlotsParams wraps a template-driven bulk slot creation request.
type BulkCreateSlotsParams struct {
	Principal    Principal
	ConferenceID string
	DayID        string
	Template     schedule.Template
}

// BatchSlotResult reports which candidates a batch operation accepted.
type BatchSlotResult struct {
	Accepted  []schedule.Slot
	Candidate int
}

// AssignParams wraps the data required to allocate a session to a slot.
type AssignParams struct {
	Principal    Principal
	ConferenceID string
	DayID        string
	SlotID       string
	RoomID       string
	SessionID    string
}

// ClearManyParams wraps a batch allocation clear request.
type ClearManyParams struct {
	Principal     Principal
	AllocationIDs []string
}

// SuggestParams wraps an auto-allocation computation request. When Seed is
// non-nil the run is reproducible.
type SuggestParams struct {
	Principal    Principal
	ConferenceID string
	Seed         *uint64
}

// ApplySuggestionsParams wraps a request to commit previously computed
// suggestions.
type ApplySuggestionsParams struct {
	Principal    Principal
	ConferenceID string
	Suggestions  []allocation.Suggestion
}

// SkippedSuggestion reports one suggestion that could not be applied and why.
type SkippedSuggestion struct {
	Suggestion allocation.Suggestion
	Reason     string
}

// ApplySuggestionsResult separates committed suggestions from skipped ones.
// Application is best-effort: a stale suggestion never fails the batch.
type ApplySuggestionsResult struct {
	Applied []allocation.Suggestion
	Skipped []SkippedSuggestion
}

// UserInput captures caller provided organizer account attributes.
type UserInput struct {
	Email       string
	DisplayName string
	IsAdmin     bool
}

// CreateUserParams wraps the data required to create an organizer account.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
	Password  string
}

// UpdateUserParams wraps the data required to update an organizer account.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// AuthenticateParams captures the data required to authenticate an organizer.
type AuthenticateParams struct {
	Email    string
	Password string
}

// UpdateSessionStatusParams wraps a submission status transition request.
type UpdateSessionStatusParams struct {
	Principal Principal
	SessionID string
	Status    allocation.Status
}

// ReplaceAvailabilityParams wraps a speaker unavailability replacement.
type ReplaceAvailabilityParams struct {
	Principal          Principal
	ConferenceID       string
	PersonID           string
	UnavailableSlotIDs []string
}
