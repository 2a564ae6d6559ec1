package handlers

import (
	"errors"
	"net/http"

	"github.com/nirvachan/server/internal/api/pagination"
	"github.com/nirvachan/server/internal/api/problem"
	"github.com/nirvachan/server/internal/domain/events"
	"github.com/nirvachan/server/internal/domain/parties"
)

type PartiesHandler struct {
	Service *parties.Service
	EventsService *events.Service
	Env     string
}

func NewPartiesHandler(service *parties.Service, eventsService *events.Service, env string) *PartiesHandler {
	return &PartiesHandler{Service: service, EventsService: eventsService, Env: env}
}

func (h *PartiesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	data := make([]map[string]any, 0, len(items))
	for _, party := range items {
		data = append(data, partyPayload(party))
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *PartiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	party, err := h.Service.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		if errors.Is(err, parties.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Party not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, partyPayload(*party))
}

// Events lists a party's events oldest first. Unlike the main listing this
// applies no status filter and resolves no viewer identity, so user_rsvp is
// always null here.
func (h *PartiesHandler) Events(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	filters := events.Filters{PartyID: pathParam(r, "id")}
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

func partyPayload(party parties.Party) map[string]any {
	return map[string]any{
		"id":          party.ID,
		"name":        party.Name,
		"name_nepali": party.NameNepali,
		"short_name":  party.ShortName,
		"color":       party.Color,
		"ideology":    party.Ideology,
		"leader":      party.Leader,
		"founded":     party.Founded,
		"symbol":      party.Symbol,
		"website":     party.Website,
		"logoUrl":     party.LogoURL,
	}
}
