package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-planner/internal/application"
	"github.com/example/conference-planner/internal/persistence"
)

type speakerService interface {
	ListSpeakers(ctx context.Context, principal application.Principal, conferenceID string) ([]persistence.ConferenceSpeaker, error)
	GetSpeaker(ctx context.Context, principal application.Principal, conferenceID, personID string) (persistence.ConferenceSpeaker, error)
	ReplaceAvailability(ctx context.Context, params application.ReplaceAvailabilityParams) error
}

type SpeakerHandler struct {
	service   speakerService
	responder responder
}

func NewSpeakerHandler(service speakerService, logger *slog.Logger) *SpeakerHandler {
	return &SpeakerHandler{service: service, responder: newResponder(logger)}
}

func (h *SpeakerHandler) List(w http.ResponseWriter, r *http.Request, conferenceID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(conferenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	speakers, err := h.service.ListSpeakers(r.Context(), principal, conferenceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]speakerDTO, 0, len(speakers))
	for _, speaker := range speakers {
		out = append(out, toSpeakerDTO(speaker))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSpeakersResponse{Speakers: out})
}

func (h *SpeakerHandler) Get(w http.ResponseWriter, r *http.Request, conferenceID, personID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	speaker, err := h.service.GetSpeaker(r.Context(), principal, conferenceID, personID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSpeakerDTO(speaker))
}

func (h *SpeakerHandler) ReplaceAvailability(w http.ResponseWriter, r *http.Request, conferenceID, personID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	err := h.service.ReplaceAvailability(r.Context(), application.ReplaceAvailabilityParams{
		Principal:          principal,
		ConferenceID:       conferenceID,
		PersonID:           personID,
		UnavailableSlotIDs: append([]string(nil), req.UnavailableSlotIDs...),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type availabilityRequest struct {
	UnavailableSlotIDs []string `json:"unavailable_slot_ids"`
}

type listSpeakersResponse struct {
	Speakers []speakerDTO `json:"speakers"`
}

type speakerDTO struct {
	PersonID           string   `json:"person_id"`
	DisplayName        string   `json:"display_name"`
	UnavailableSlotIDs []string `json:"unavailable_slot_ids,omitempty"`
	SessionIDs         []string `json:"session_ids,omitempty"`
}

func toSpeakerDTO(speaker persistence.ConferenceSpeaker) speakerDTO {
	return speakerDTO{
		PersonID:           speaker.PersonID,
		DisplayName:        speaker.DisplayName,
		UnavailableSlotIDs: append([]string(nil), speaker.UnavailableSlotIDs...),
		SessionIDs:         append([]string(nil), speaker.SessionIDs...),
	}
}
