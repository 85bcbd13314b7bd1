package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-planner/internal/application"
	"github.com/example/conference-planner/internal/persistence"
	"github.com/example/conference-planner/internal/schedule"
)

type planningService interface {
	GetConference(ctx context.Context, principal application.Principal, id string) (persistence.Conference, error)
	ListConferences(ctx context.Context, principal application.Principal) ([]persistence.Conference, error)
	ValidateSlot(ctx context.Context, params application.ValidateSlotParams) ([]schedule.ErrorCode, error)
	CreateSlot(ctx context.Context, params application.CreateSlotParams) (application.SlotResult, error)
	UpdateSlot(ctx context.Context, params application.UpdateSlotParams) (application.SlotResult, error)
	DeleteSlot(ctx context.Context, params application.DeleteSlotParams) error
	CopyDay(ctx context.Context, params application.CopyDayParams) (application.BatchSlotResult, error)
	CopyRoom(ctx context.Context, params application.CopyRoomParams) (application.BatchSlotResult, error)
	BulkCreateSlots(ctx context.Context, params application.BulkCreateSlotsParams) (application.BatchSlotResult, error)
}

type PlanningHandler struct {
	service   planningService
	responder responder
}

func NewPlanningHandler(service planningService, logger *slog.Logger) *PlanningHandler {
	return &PlanningHandler{service: service, responder: newResponder(logger)}
}

func (h *PlanningHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	conferences, err := h.service.ListConferences(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]conferenceDTO, 0, len(conferences))
	for _, conference := range conferences {
		out = append(out, toConferenceDTO(conference))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listConferencesResponse{Conferences: out})
}

func (h *PlanningHandler) Get(w http.ResponseWriter, r *http.Request, conferenceID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(conferenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	conference, err := h.service.GetConference(r.Context(), principal, conferenceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toConferenceDTO(conference))
}

func (h *PlanningHandler) ValidateSlot(w http.ResponseWriter, r *http.Request, conferenceID, dayID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(dayID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDayID)
		return
	}

	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	codes, err := h.service.ValidateSlot(r.Context(), application.ValidateSlotParams{
		Principal:    principal,
		ConferenceID: conferenceID,
		DayID:        dayID,
		SlotID:       strings.TrimSpace(req.ID),
		Input:        req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, validateSlotResponse{ErrorCodes: toErrorCodeStrings(codes)})
}

func (h *PlanningHandler) CreateSlot(w http.ResponseWriter, r *http.Request, conferenceID, dayID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(dayID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDayID)
		return
	}

	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.CreateSlot(r.Context(), application.CreateSlotParams{
		Principal:    principal,
		ConferenceID: conferenceID,
		DayID:        dayID,
		Input:        req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderSlotResult(r.Context(), w, result, http.StatusCreated)
}

func (h *PlanningHandler) UpdateSlot(w http.ResponseWriter, r *http.Request, conferenceID, dayID, slotID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(slotID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSlotID)
		return
	}

	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.UpdateSlot(r.Context(), application.UpdateSlotParams{
		Principal:    principal,
		ConferenceID: conferenceID,
		DayID:        dayID,
		SlotID:       slotID,
		Input:        req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderSlotResult(r.Context(), w, result, http.StatusOK)
}

func (h *PlanningHandler) DeleteSlot(w http.ResponseWriter, r *http.Request, conferenceID, dayID, slotID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(slotID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSlotID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	err := h.service.DeleteSlot(r.Context(), application.DeleteSlotParams{
		Principal:    principal,
		ConferenceID: conferenceID,
		DayID:        dayID,
		SlotID:       slotID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *PlanningHandler) Copy(w http.ResponseWriter, r *http.Request, conferenceID, dayID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req copyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var result application.BatchSlotResult
	var err error
	switch {
	case strings.TrimSpace(req.TargetDayID) != "":
		result, err = h.service.CopyDay(r.Context(), application.CopyDayParams{
			Principal:    principal,
			ConferenceID: conferenceID,
			SourceDayID:  dayID,
			TargetDayID:  strings.TrimSpace(req.TargetDayID),
		})
	case strings.TrimSpace(req.SourceRoomID) != "" && strings.TrimSpace(req.TargetRoomID) != "":
		result, err = h.service.CopyRoom(r.Context(), application.CopyRoomParams{
			Principal:    principal,
			ConferenceID: conferenceID,
			DayID:        dayID,
			SourceRoomID: strings.TrimSpace(req.SourceRoomID),
			TargetRoomID: strings.TrimSpace(req.TargetRoomID),
		})
	default:
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBatchSlotResponse(result))
}

func (h *PlanningHandler) BulkCreateSlots(w http.ResponseWriter, r *http.Request, conferenceID, dayID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bulkSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.BulkCreateSlots(r.Context(), application.BulkCreateSlotsParams{
		Principal:    principal,
		ConferenceID: conferenceID,
		DayID:        dayID,
		Template:     req.toTemplate(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBatchSlotResponse(result))
}

func (h *PlanningHandler) renderSlotResult(ctx context.Context, w http.ResponseWriter, result application.SlotResult, status int) {
	if !result.Accepted() {
		h.responder.writeJSON(ctx, w, http.StatusUnprocessableEntity, slotResultResponse{
			Slot:       toSlotDTO(result.Slot),
			ErrorCodes: toErrorCodeStrings(result.ErrorCodes),
		})
		return
	}
	h.responder.writeJSON(ctx, w, status, slotResultResponse{Slot: toSlotDTO(result.Slot)})
}

type slotRequest struct {
	ID              string   `json:"id,omitempty"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	Duration        int      `json:"duration"`
	RoomID          string   `json:"room_id"`
	SlotTypeID      string   `json:"slot_type_id"`
	SessionTypeID   string   `json:"session_type_id,omitempty"`
	OverflowRoomIDs []string `json:"overflow_room_ids,omitempty"`
}

func (r slotRequest) toInput() application.SlotInput {
	return application.SlotInput{
		StartTime:       strings.TrimSpace(r.StartTime),
		EndTime:         strings.TrimSpace(r.EndTime),
		Duration:        r.Duration,
		RoomID:          strings.TrimSpace(r.RoomID),
		SlotTypeID:      strings.TrimSpace(r.SlotTypeID),
		SessionTypeID:   strings.TrimSpace(r.SessionTypeID),
		OverflowRoomIDs: append([]string(nil), r.OverflowRoomIDs...),
	}
}

type copyRequest struct {
	TargetDayID  string `json:"target_day_id,omitempty"`
	SourceRoomID string `json:"source_room_id,omitempty"`
	TargetRoomID string `json:"target_room_id,omitempty"`
}

type bulkSlotsRequest struct {
	RoomIDs         []string `json:"room_ids"`
	SlotTypeID      string   `json:"slot_type_id"`
	SessionTypeID   string   `json:"session_type_id,omitempty"`
	Duration        int      `json:"duration"`
	Gap             int      `json:"gap,omitempty"`
	From            string   `json:"from"`
	Until           string   `json:"until"`
	OverflowRoomIDs []string `json:"overflow_room_ids,omitempty"`
}

func (r bulkSlotsRequest) toTemplate() schedule.Template {
	return schedule.Template{
		RoomIDs:         append([]string(nil), r.RoomIDs...),
		SlotTypeID:      strings.TrimSpace(r.SlotTypeID),
		SessionTypeID:   strings.TrimSpace(r.SessionTypeID),
		Duration:        r.Duration,
		Gap:             r.Gap,
		From:            strings.TrimSpace(r.From),
		Until:           strings.TrimSpace(r.Until),
		OverflowRoomIDs: append([]string(nil), r.OverflowRoomIDs...),
	}
}

type validateSlotResponse struct {
	ErrorCodes []string `json:"error_codes"`
}

type slotResultResponse struct {
	Slot       slotDTO  `json:"slot"`
	ErrorCodes []string `json:"error_codes,omitempty"`
}

type batchSlotResponse struct {
	Accepted   []slotDTO `json:"accepted"`
	Candidates int       `json:"candidates"`
}

func toBatchSlotResponse(result application.BatchSlotResult) batchSlotResponse {
	out := batchSlotResponse{Candidates: result.Candidate, Accepted: make([]slotDTO, 0, len(result.Accepted))}
	for _, slot := range result.Accepted {
		out.Accepted = append(out.Accepted, toSlotDTO(slot))
	}
	return out
}

func toErrorCodeStrings(codes []schedule.ErrorCode) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, string(code))
	}
	return out
}

type listConferencesResponse struct {
	Conferences []conferenceDTO `json:"conferences"`
}

type conferenceDTO struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Days         []dayDTO         `json:"days"`
	Rooms        []roomDTO        `json:"rooms"`
	SessionTypes []sessionTypeDTO `json:"session_types"`
	Tracks       []trackDTO       `json:"tracks"`
}

type dayDTO struct {
	ID              string    `json:"id"`
	Date            string    `json:"date"`
	Index           int       `json:"index"`
	BeginTime       string    `json:"begin_time"`
	EndTime         string    `json:"end_time"`
	DisabledRoomIDs []string  `json:"disabled_room_ids,omitempty"`
	Slots           []slotDTO `json:"slots"`
}

type slotDTO struct {
	ID              string   `json:"id"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	Duration        int      `json:"duration"`
	RoomID          string   `json:"room_id"`
	SlotTypeID      string   `json:"slot_type_id"`
	SessionTypeID   string   `json:"session_type_id,omitempty"`
	OverflowRoomIDs []string `json:"overflow_room_ids,omitempty"`
}

type roomDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Capacity      int    `json:"capacity"`
	IsSessionRoom bool   `json:"is_session_room"`
}

type sessionTypeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Duration    int    `json:"duration"`
	MaxSpeakers int    `json:"max_speakers"`
}

type trackDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func toConferenceDTO(conference persistence.Conference) conferenceDTO {
	dto := conferenceDTO{
		ID:           conference.ID,
		Name:         conference.Name,
		Days:         make([]dayDTO, 0, len(conference.Days)),
		Rooms:        make([]roomDTO, 0, len(conference.Rooms)),
		SessionTypes: make([]sessionTypeDTO, 0, len(conference.SessionTypes)),
		Tracks:       make([]trackDTO, 0, len(conference.Tracks)),
	}
	for _, day := range conference.Days {
		dto.Days = append(dto.Days, toDayDTO(day))
	}
	for _, room := range conference.Rooms {
		dto.Rooms = append(dto.Rooms, roomDTO{
			ID:            room.ID,
			Name:          room.Name,
			Capacity:      room.Capacity,
			IsSessionRoom: room.IsSessionRoom,
		})
	}
	for _, sessionType := range conference.SessionTypes {
		dto.SessionTypes = append(dto.SessionTypes, sessionTypeDTO{
			ID:          sessionType.ID,
			Name:        sessionType.Name,
			Duration:    sessionType.Duration,
			MaxSpeakers: sessionType.MaxSpeakers,
		})
	}
	for _, track := range conference.Tracks {
		dto.Tracks = append(dto.Tracks, trackDTO{ID: track.ID, Name: track.Name, Color: track.Color})
	}
	return dto
}

func toDayDTO(day schedule.Day) dayDTO {
	dto := dayDTO{
		ID:              day.ID,
		Date:            day.Date.Format("2006-01-02"),
		Index:           day.Index,
		BeginTime:       day.BeginTime,
		EndTime:         day.EndTime,
		DisabledRoomIDs: append([]string(nil), day.DisabledRoomIDs...),
		Slots:           make([]slotDTO, 0, len(day.Slots)),
	}
	for _, slot := range day.Slots {
		dto.Slots = append(dto.Slots, toSlotDTO(slot))
	}
	return dto
}

func toSlotDTO(slot schedule.Slot) slotDTO {
	return slotDTO{
		ID:              slot.ID,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		Duration:        slot.Duration,
		RoomID:          slot.RoomID,
		SlotTypeID:      slot.SlotTypeID,
		SessionTypeID:   slot.SessionTypeID,
		OverflowRoomIDs: append([]string(nil), slot.OverflowRoomIDs...),
	}
}
