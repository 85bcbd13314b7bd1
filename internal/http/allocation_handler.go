package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/conference-planner/internal/application"
	"github.com/example/conference-planner/internal/persistence"
)

type allocationService interface {
	Assign(ctx context.Context, params application.AssignParams) (persistence.SessionAllocation, error)
	Clear(ctx context.Context, principal application.Principal, allocationID string) error
	ClearMany(ctx context.Context, params application.ClearManyParams) error
	ListAllocations(ctx context.Context, principal application.Principal, conferenceID string) ([]persistence.SessionAllocation, error)
}

type AllocationHandler struct {
	service   allocationService
	responder responder
}

func NewAllocationHandler(service allocationService, logger *slog.Logger) *AllocationHandler {
	return &AllocationHandler{service: service, responder: newResponder(logger)}
}

func (h *AllocationHandler) List(w http.ResponseWriter, r *http.Request, conferenceID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(conferenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	allocations, err := h.service.ListAllocations(r.Context(), principal, conferenceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]allocationDTO, 0, len(allocations))
	for _, alloc := range allocations {
		out = append(out, toAllocationDTO(alloc))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAllocationsResponse{Allocations: out})
}

func (h *AllocationHandler) Assign(w http.ResponseWriter, r *http.Request, conferenceID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	alloc, err := h.service.Assign(r.Context(), application.AssignParams{
		Principal:    principal,
		ConferenceID: conferenceID,
		DayID:        strings.TrimSpace(req.DayID),
		SlotID:       strings.TrimSpace(req.SlotID),
		RoomID:       strings.TrimSpace(req.RoomID),
		SessionID:    strings.TrimSpace(req.SessionID),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAllocationDTO(alloc))
}

func (h *AllocationHandler) Clear(w http.ResponseWriter, r *http.Request, allocationID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(allocationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.Clear(r.Context(), principal, allocationID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AllocationHandler) ClearMany(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req clearManyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	err := h.service.ClearMany(r.Context(), application.ClearManyParams{
		Principal:     principal,
		AllocationIDs: append([]string(nil), req.AllocationIDs...),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type assignRequest struct {
	DayID     string `json:"day_id"`
	SlotID    string `json:"slot_id"`
	RoomID    string `json:"room_id"`
	SessionID string `json:"session_id"`
}

type clearManyRequest struct {
	AllocationIDs []string `json:"allocation_ids"`
}

type listAllocationsResponse struct {
	Allocations []allocationDTO `json:"allocations"`
}

type allocationDTO struct {
	ID          string `json:"id"`
	DayID       string `json:"day_id"`
	SlotID      string `json:"slot_id"`
	RoomID      string `json:"room_id"`
	SessionID   string `json:"session_id"`
	LastUpdated string `json:"last_updated"`
}

func toAllocationDTO(alloc persistence.SessionAllocation) allocationDTO {
	return allocationDTO{
		ID:          alloc.ID,
		DayID:       alloc.DayID,
		SlotID:      alloc.SlotID,
		RoomID:      alloc.RoomID,
		SessionID:   alloc.SessionID,
		LastUpdated: alloc.LastUpdated.UTC().Format(time.RFC3339Nano),
	}
}
