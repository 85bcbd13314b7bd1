package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-planner/internal/allocation"
	"github.com/example/conference-planner/internal/application"
	"github.com/example/conference-planner/internal/persistence"
)

type sessionService interface {
	ListSessions(ctx context.Context, principal application.Principal, conferenceID string, eligibleOnly bool) ([]persistence.Session, error)
	GetSession(ctx context.Context, principal application.Principal, id string) (persistence.Session, error)
	UpdateStatus(ctx context.Context, params application.UpdateSessionStatusParams) error
}

type SessionHandler struct {
	service   sessionService
	responder responder
}

func NewSessionHandler(service sessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, responder: newResponder(logger)}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request, conferenceID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(conferenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceID)
		return
	}

	eligibleOnly := strings.EqualFold(r.URL.Query().Get("eligible"), "true")

	principal, _ := PrincipalFromContext(r.Context())
	sessions, err := h.service.ListSessions(r.Context(), principal, conferenceID, eligibleOnly)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionDTO(session))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: out})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request, sessionID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(sessionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	session, err := h.service.GetSession(r.Context(), principal, sessionID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSessionDTO(session))
}

func (h *SessionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(sessionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	err := h.service.UpdateStatus(r.Context(), application.UpdateSessionStatusParams{
		Principal: principal,
		SessionID: sessionID,
		Status:    allocation.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type listSessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type sessionDTO struct {
	ID            string   `json:"id"`
	ConferenceID  string   `json:"conference_id"`
	Title         string   `json:"title"`
	SpeakerIDs    []string `json:"speaker_ids"`
	Status        string   `json:"status,omitempty"`
	SessionTypeID string   `json:"session_type_id,omitempty"`
	TrackID       string   `json:"track_id,omitempty"`
	ReviewAverage float64  `json:"review_average,omitempty"`
}

func toSessionDTO(session persistence.Session) sessionDTO {
	dto := sessionDTO{
		ID:           session.ID,
		ConferenceID: session.ConferenceID,
		Title:        session.Title,
		SpeakerIDs:   session.SpeakerIDs(),
	}
	if session.Submission != nil {
		dto.Status = session.Submission.Status
		dto.SessionTypeID = session.Submission.SessionTypeID
		dto.TrackID = session.Submission.TrackID
		dto.ReviewAverage = session.Submission.ReviewAverage
	}
	return dto
}
