package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/conference-planner/internal/application"
	"github.com/example/conference-planner/internal/persistence"
)

type stubSpeakerService struct {
	speakers []persistence.ConferenceSpeaker

	replaceParams []application.ReplaceAvailabilityParams
	replaceErr    error
}

func (s *stubSpeakerService) ListSpeakers(ctx context.Context, principal application.Principal, conferenceID string) ([]persistence.ConferenceSpeaker, error) {
	return s.speakers, nil
}

func (s *stubSpeakerService) GetSpeaker(ctx context.Context, principal application.Principal, conferenceID, personID string) (persistence.ConferenceSpeaker, error) {
	for _, speaker := range s.speakers {
		if speaker.PersonID == personID {
			return speaker, nil
		}
	}
	return persistence.ConferenceSpeaker{}, application.ErrNotFound
}

func (s *stubSpeakerService) ReplaceAvailability(ctx context.Context, params application.ReplaceAvailabilityParams) error {
	s.replaceParams = append(s.replaceParams, params)
	return s.replaceErr
}

func TestSpeakerHandler_List(t *testing.T) {
	service := &stubSpeakerService{speakers: []persistence.ConferenceSpeaker{
		{PersonID: "person-1", DisplayName: "Ada Lovelace", UnavailableSlotIDs: []string{"slot-1"}},
	}}
	handler := NewSpeakerHandler(service, nil)

	recorder := httptest.NewRecorder()
	handler.List(recorder, authedRequest(http.MethodGet, "/conferences/conf-1/speakers", ""), "conf-1")

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body listSpeakersResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Speakers) != 1 || body.Speakers[0].DisplayName != "Ada Lovelace" {
		t.Fatalf("unexpected body %+v", body)
	}
	if len(body.Speakers[0].UnavailableSlotIDs) != 1 {
		t.Fatalf("expected the blacklist in the body, got %+v", body.Speakers[0])
	}
}

func TestSpeakerHandler_Get_NotFound(t *testing.T) {
	handler := NewSpeakerHandler(&stubSpeakerService{}, nil)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, authedRequest(http.MethodGet, "/conferences/conf-1/speakers/person-missing", ""),
		"conf-1", "person-missing")

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestSpeakerHandler_ReplaceAvailability(t *testing.T) {
	service := &stubSpeakerService{}
	handler := NewSpeakerHandler(service, nil)

	recorder := httptest.NewRecorder()
	handler.ReplaceAvailability(recorder,
		authedRequest(http.MethodPut, "/conferences/conf-1/speakers/person-1/availability",
			`{"unavailable_slot_ids":["slot-1","slot-2"]}`),
		"conf-1", "person-1")

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
	if len(service.replaceParams) != 1 {
		t.Fatalf("expected one service call, got %d", len(service.replaceParams))
	}
	params := service.replaceParams[0]
	if params.ConferenceID != "conf-1" || params.PersonID != "person-1" {
		t.Fatalf("unexpected params %+v", params)
	}
	if len(params.UnavailableSlotIDs) != 2 || params.UnavailableSlotIDs[1] != "slot-2" {
		t.Fatalf("unexpected slot ids %v", params.UnavailableSlotIDs)
	}
}
