package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/conference-planner/internal/allocation"
	"github.com/example/conference-planner/internal/persistence"
)

// manualStatusTransitions lists the submission status changes organizers may
// request directly. SCHEDULED and PROGRAMMED are placement-driven and only
// ever set by the allocation service.
var manualStatusTransitions = map[allocation.Status][]allocation.Status{
	allocation.StatusSubmitted:        {allocation.StatusAccepted, allocation.StatusRejected},
	allocation.StatusAccepted:         {allocation.StatusSubmitted, allocation.StatusRejected, allocation.StatusSpeakerConfirmed},
	allocation.StatusRejected:         {allocation.StatusSubmitted},
	allocation.StatusSpeakerConfirmed: {allocation.StatusAccepted},
}

// SessionService reads proposed talks and drives their review lifecycle.
type SessionService struct {
	sessions SessionStore
	logger   *slog.Logger
}

// NewSessionService constructs a session service with the provided dependencies.
func NewSessionService(sessions SessionStore) *SessionService {
	return NewSessionServiceWithLogger(sessions, nil)
}

// NewSessionServiceWithLogger constructs a session service with a specified logger.
func NewSessionServiceWithLogger(sessions SessionStore, logger *slog.Logger) *SessionService {
	return &SessionService{sessions: sessions, logger: defaultLogger(logger)}
}

// ListSessions returns the sessions proposed to a conference. With
// eligibleOnly set, only sessions whose status allows allocation are
// returned.
func (s *SessionService) ListSessions(ctx context.Context, principal Principal, conferenceID string, eligibleOnly bool) ([]persistence.Session, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	sessions, err := s.sessions.ListSessions(ctx, conferenceID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if !eligibleOnly {
		return sessions, nil
	}

	filtered := sessions[:0:0]
	for _, session := range sessions {
		if session.Submission == nil {
			continue
		}
		if allocation.Status(session.Submission.Status).Eligible() {
			filtered = append(filtered, session)
		}
	}
	return filtered, nil
}

// GetSession loads one session.
func (s *SessionService) GetSession(ctx context.Context, principal Principal, id string) (persistence.Session, error) {
	if s == nil {
		return persistence.Session{}, fmt.Errorf("SessionService is nil")
	}
	if principal.UserID == "" {
		return persistence.Session{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return persistence.Session{}, mapStorageError(err)
	}
	return session, nil
}

// UpdateStatus applies a manual submission status transition after checking
// it is legal from the session's current status.
func (s *SessionService) UpdateStatus(ctx context.Context, params UpdateSessionStatusParams) error {
	if s == nil {
		return fmt.Errorf("SessionService is nil")
	}
	if params.Principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := serviceLogger(ctx, s.logger, "SessionService", "UpdateStatus",
		"session_id", params.SessionID,
		"status", params.Status,
	)

	session, err := s.sessions.GetSession(ctx, params.SessionID)
	if err != nil {
		return mapStorageError(err)
	}

	vErr := &ValidationError{}
	if session.Submission == nil {
		vErr.add("session_id", "session was not submitted to a conference")
		return vErr
	}

	current := allocation.Status(session.Submission.Status)
	if !transitionAllowed(current, params.Status) {
		vErr.add("status", fmt.Sprintf("transition from %s to %s is not allowed", current, params.Status))
		return vErr
	}

	if err := s.sessions.UpdateSessionStatus(ctx, params.SessionID, string(params.Status)); err != nil {
		return mapStorageError(err)
	}

	logger.InfoContext(ctx, "session status updated", "previous", current)
	return nil
}

func transitionAllowed(from, to allocation.Status) bool {
	for _, allowed := range manualStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
