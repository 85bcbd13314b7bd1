package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-planner/internal/application"
	"github.com/example/conference-planner/internal/logging"
)

var (
	errBadRequestBody      = errors.New("the request body is malformed")
	errInvalidConferenceID = errors.New("a conference id is required")
	errInvalidDayID        = errors.New("a day id is required")
	errInvalidSlotID       = errors.New("a slot id is required")
	errInvalidSessionID    = errors.New("a session id is required")
	errInvalidUserID       = errors.New("a user id is required")
	errMissingSessionToken = errors.New("a session token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "you do not have permission to perform this operation",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: statusMessage(http.StatusNotFound)})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: statusMessage(http.StatusConflict)})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "the session is no longer valid, please log in again",
		})
	default:
		var cErr *application.SpeakerConflictError
		if errors.As(err, &cErr) {
			r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
				ErrorCode: "SPEAKER_CONFLICT",
				Message:   "a speaker is unavailable for the requested slot",
				Conflicts: toSpeakerConflictDTOs(cErr.Conflicts),
			})
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: statusMessage(http.StatusUnprocessableEntity),
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	return logging.Or(ctx, r.logger)
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "the request is invalid"
	case http.StatusUnauthorized:
		return "authentication is required"
	case http.StatusForbidden:
		return "you do not have permission to perform this operation"
	case http.StatusNotFound:
		return "the requested resource was not found"
	case http.StatusConflict:
		return "the request conflicts with the current state of the resource"
	case http.StatusUnprocessableEntity:
		return "the request contains invalid fields"
	default:
		return "an internal server error occurred"
	}
}

type errorResponse struct {
	ErrorCode string               `json:"error_code,omitempty"`
	Message   string               `json:"message"`
	Errors    map[string]string    `json:"errors,omitempty"`
	Conflicts []speakerConflictDTO `json:"conflicts,omitempty"`
}

type speakerConflictDTO struct {
	SpeakerLabel        string         `json:"speaker_label"`
	AvailableTimeRanges []timeRangeDTO `json:"available_time_ranges"`
}

type timeRangeDTO struct {
	DayID string `json:"day_id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func toSpeakerConflictDTOs(conflicts []application.SpeakerConflict) []speakerConflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]speakerConflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		dto := speakerConflictDTO{SpeakerLabel: conflict.SpeakerLabel}
		for _, tr := range conflict.AvailableTimeRanges {
			dto.AvailableTimeRanges = append(dto.AvailableTimeRanges, timeRangeDTO{
				DayID: tr.DayID,
				Start: tr.Start,
				End:   tr.End,
			})
		}
		out = append(out, dto)
	}
	return out
}
