package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/nirvachan/server/internal/api/middleware"
	"github.com/nirvachan/server/internal/api/pagination"
	"github.com/nirvachan/server/internal/api/problem"
	"github.com/nirvachan/server/internal/domain/events"
	"github.com/nirvachan/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type listEnvelope struct {
	Data       []map[string]any `json:"data"`
	Pagination pagination.Meta  `json:"pagination"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, sort, page, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), filters, sort, page, viewerID(r))
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	data := make([]map[string]any, 0, len(result.Events))
	for _, event := range result.Events {
		data = append(data, eventPayload(event))
	}

	writeJSON(w, http.StatusOK, listEnvelope{
		Data:       data,
		Pagination: pagination.NewMeta(page, result.Total),
	})
}

func (h *EventsHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	query, err := events.ParseNearby(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	items, err := h.Service.Nearby(r.Context(), query)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	data := make([]map[string]any, 0, len(items))
	for _, event := range items {
		data = append(data, eventPayload(event))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":          data,
		"center":        map[string]float64{"lat": query.Lat, "lng": query.Lng},
		"radius_meters": query.RadiusMeters,
	})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			events.FilterError{Field: "id", Message: "missing"}, h.Env)
		return
	}

	event, err := h.Service.Get(r.Context(), id, viewerID(r))
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventPayload(*event))
}

type rsvpRequest struct {
	Status string `json:"status"`
}

func (h *EventsHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	id := pathParam(r, "id")

	// An absent or empty body falls back to the default status.
	var body rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if body.Status == "" {
		body.Status = "going"
	}

	event, err := h.Service.SetRSVP(r.Context(), user.ID, id, body.Status)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	metrics.RSVPWritesTotal.WithLabelValues("set").Inc()
	writeJSON(w, http.StatusOK, eventPayload(*event))
}

func (h *EventsHandler) CancelRSVP(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	if err := h.Service.CancelRSVP(r.Context(), user.ID, pathParam(r, "id")); err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	metrics.RSVPWritesTotal.WithLabelValues("cancel").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func viewerID(r *http.Request) string {
	if user := middleware.CurrentUser(r.Context()); user != nil {
		return user.ID
	}
	return ""
}

// eventPayload projects an event into its wire shape. The user_rsvp key is
// present on every response carrying an event, null when the viewer is
// anonymous or holds no RSVP.
func eventPayload(event events.Event) map[string]any {
	payload := map[string]any{
		"id":                  event.ID,
		"title":               event.Title,
		"title_nepali":        event.TitleNepali,
		"party_id":            event.PartyID,
		"constituency_id":     event.ConstituencyID,
		"type":                event.Type,
		"status":              event.Status,
		"description":         event.Description,
		"datetime":            event.StartTime.UTC().Format(time.RFC3339),
		"end_time":            nil,
		"speakers":            emptyWhenNil(event.Speakers),
		"expected_attendance": event.ExpectedAttendance,
		"rsvp_count":          event.RSVPCount,
		"tags":                emptyWhenNil(event.Tags),
		"venue":               nil,
		"party":               nil,
		"constituency":        nil,
	}

	if event.EndTime != nil {
		payload["end_time"] = event.EndTime.UTC().Format(time.RFC3339)
	}
	if event.Venue != nil {
		venue := map[string]any{
			"name":        event.Venue.Name,
			"address":     event.Venue.Address,
			"coordinates": nil,
		}
		if event.Venue.Lat != nil && event.Venue.Lng != nil {
			venue["coordinates"] = []float64{*event.Venue.Lat, *event.Venue.Lng}
		}
		payload["venue"] = venue
	}
	if event.Party != nil {
		payload["party"] = map[string]any{
			"id":         event.Party.ID,
			"name":       event.Party.Name,
			"short_name": event.Party.ShortName,
			"color":      event.Party.Color,
		}
	}
	if event.Constituency != nil {
		payload["constituency"] = map[string]any{
			"id":                event.Constituency.ID,
			"name":              event.Constituency.Name,
			"province":          event.Constituency.Province,
			"district":          event.Constituency.District,
			"registered_voters": event.Constituency.RegisteredVoters,
		}
	}
	if event.DistanceMeters != nil {
		payload["distance_meters"] = *event.DistanceMeters
	}
	payload["user_rsvp"] = event.UserRSVP
	return payload
}

func emptyWhenNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
