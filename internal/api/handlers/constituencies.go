package handlers

import (
	"errors"
	"net/http"

	"github.com/nirvachan/server/internal/api/pagination"
	"github.com/nirvachan/server/internal/api/problem"
	"github.com/nirvachan/server/internal/domain/constituencies"
	"github.com/nirvachan/server/internal/domain/events"
)

// defaultBounds stands in for constituencies without a stored boundary, a
// rough box around the Kathmandu valley.
var defaultBounds = [2][2]float64{{27.0, 85.0}, {28.0, 86.0}}

type ConstituenciesHandler struct {
	Service *constituencies.Service
	EventsService *events.Service
	Env     string
}

func NewConstituenciesHandler(service *constituencies.Service, eventsService *events.Service, env string) *ConstituenciesHandler {
	return &ConstituenciesHandler{Service: service, EventsService: eventsService, Env: env}
}

func (h *ConstituenciesHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := constituencies.Filters{
		Province: r.URL.Query().Get("province"),
		District: r.URL.Query().Get("district"),
	}

	items, err := h.Service.List(r.Context(), filters)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	data := make([]map[string]any, 0, len(items))
	for _, constituency := range items {
		data = append(data, constituencyPayload(constituency))
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *ConstituenciesHandler) Detect(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := constituencies.ParsePoint(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	constituency, err := h.Service.Detect(r.Context(), lat, lng)
	if err != nil {
		if errors.Is(err, constituencies.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "No constituency found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, constituencyPayload(*constituency))
}

func (h *ConstituenciesHandler) Get(w http.ResponseWriter, r *http.Request) {
	constituency, err := h.Service.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		if errors.Is(err, constituencies.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Constituency not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, constituencyPayload(*constituency))
}

// Events lists a constituency's events oldest first, unfiltered by status.
// No viewer identity is resolved here, so user_rsvp is always null.
func (h *ConstituenciesHandler) Events(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	filters := events.Filters{ConstituencyID: pathParam(r, "id")}
	sort := events.Sort{Key: events.SortKeyStartTime}

	result, err := h.EventsService.List(r.Context(), filters, sort, page, "")
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

func constituencyPayload(constituency constituencies.Constituency) map[string]any {
	payload := map[string]any{
		"id":                constituency.ID,
		"name":              constituency.Name,
		"name_nepali":       constituency.NameNepali,
		"province":          constituency.Province,
		"district":          constituency.District,
		"type":              constituency.Type,
		"registered_voters": constituency.RegisteredVoters,
		"center":            nil,
		"bounds":            defaultBounds,
	}
	if constituency.CenterLat != nil && constituency.CenterLng != nil {
		payload["center"] = []float64{*constituency.CenterLat, *constituency.CenterLng}
	}
	if constituency.Bounds != nil {
		payload["bounds"] = *constituency.Bounds
	}
	return payload
}
