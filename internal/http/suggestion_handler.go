package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-planner/internal/allocation"
	"github.com/example/conference-planner/internal/application"
)

type suggestionService interface {
	Suggest(ctx context.Context, params application.SuggestParams) ([]allocation.Suggestion, error)
	Apply(ctx context.Context, params application.ApplySuggestionsParams) (application.ApplySuggestionsResult, error)
}

type SuggestionHandler struct {
	service   suggestionService
	responder responder
}

func NewSuggestionHandler(service suggestionService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{service: service, responder: newResponder(logger)}
}

func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request, conferenceID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(conferenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceID)
		return
	}

	var req suggestRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
	}

	principal, _ := PrincipalFromContext(r.Context())
	suggestions, err := h.service.Suggest(r.Context(), application.SuggestParams{
		Principal:    principal,
		ConferenceID: conferenceID,
		Seed:         req.Seed,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, suggestResponse{
		Suggestions: toSuggestionDTOs(suggestions),
	})
}

func (h *SuggestionHandler) Apply(w http.ResponseWriter, r *http.Request, conferenceID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(conferenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceID)
		return
	}

	var req applySuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	suggestions := make([]allocation.Suggestion, 0, len(req.Suggestions))
	for _, dto := range req.Suggestions {
		suggestions = append(suggestions, dto.toSuggestion())
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.Apply(r.Context(), application.ApplySuggestionsParams{
		Principal:    principal,
		ConferenceID: conferenceID,
		Suggestions:  suggestions,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	skipped := make([]skippedSuggestionDTO, 0, len(result.Skipped))
	for _, entry := range result.Skipped {
		skipped = append(skipped, skippedSuggestionDTO{
			Suggestion: toSuggestionDTO(entry.Suggestion),
			Reason:     entry.Reason,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, applySuggestionsResponse{
		Applied: toSuggestionDTOs(result.Applied),
		Skipped: skipped,
	})
}

type suggestRequest struct {
	Seed *uint64 `json:"seed"`
}

type suggestResponse struct {
	Suggestions []suggestionDTO `json:"suggestions"`
}

type applySuggestionsRequest struct {
	Suggestions []suggestionDTO `json:"suggestions"`
}

type applySuggestionsResponse struct {
	Applied []suggestionDTO        `json:"applied"`
	Skipped []skippedSuggestionDTO `json:"skipped"`
}

type suggestionDTO struct {
	DayID     string `json:"day_id"`
	SlotID    string `json:"slot_id"`
	RoomID    string `json:"room_id"`
	SessionID string `json:"session_id"`
}

type skippedSuggestionDTO struct {
	Suggestion suggestionDTO `json:"suggestion"`
	Reason     string        `json:"reason"`
}

func (d suggestionDTO) toSuggestion() allocation.Suggestion {
	return allocation.Suggestion{
		DayID:     strings.TrimSpace(d.DayID),
		SlotID:    strings.TrimSpace(d.SlotID),
		RoomID:    strings.TrimSpace(d.RoomID),
		SessionID: strings.TrimSpace(d.SessionID),
	}
}

func toSuggestionDTO(s allocation.Suggestion) suggestionDTO {
	return suggestionDTO{
		DayID:     s.DayID,
		SlotID:    s.SlotID,
		RoomID:    s.RoomID,
		SessionID: s.SessionID,
	}
}

func toSuggestionDTOs(suggestions []allocation.Suggestion) []suggestionDTO {
	out := make([]suggestionDTO, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, toSuggestionDTO(s))
	}
	return out
}
