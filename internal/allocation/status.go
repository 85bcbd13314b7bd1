package allocation

// Status is the lifecycle state of a session submission within a conference.
type Status string

const (
	// StatusSubmitted marks a freshly submitted session awaiting review.
	StatusSubmitted Status = "SUBMITTED"
	// StatusAccepted marks a session approved by the program committee.
	StatusAccepted Status = "ACCEPTED"
	// StatusRejected marks a session turned down by the program committee.
	StatusRejected Status = "REJECTED"
	// StatusSpeakerConfirmed marks an accepted session whose speakers agreed
	// to present.
	StatusSpeakerConfirmed Status = "SPEAKER_CONFIRMED"
	// StatusScheduled marks an accepted session placed on the schedule.
	StatusScheduled Status = "SCHEDULED"
	// StatusProgrammed marks a speaker-confirmed session placed on the
	// schedule.
	StatusProgrammed Status = "PROGRAMMED"
)

// Eligible reports whether a session in this status may receive an
// allocation. Only accepted and speaker-confirmed sessions qualify.
func (s Status) Eligible() bool {
	return s == StatusAccepted || s == StatusSpeakerConfirmed
}

// Advanced returns the status after the session gains its allocation, and
// whether a transition applies.
func (s Status) Advanced() (Status, bool) {
	switch s {
	case StatusAccepted:
		return StatusScheduled, true
	case StatusSpeakerConfirmed:
		return StatusProgrammed, true
	}
	return s, false
}

// RolledBack returns the status after the session loses its last allocation,
// and whether a transition applies.
func (s Status) RolledBack() (Status, bool) {
	switch s {
	case StatusScheduled:
		return StatusAccepted, true
	case StatusProgrammed:
		return StatusSpeakerConfirmed, true
	}
	return s, false
}
