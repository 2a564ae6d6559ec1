package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nirvachan/server/internal/api/middleware"
	"github.com/nirvachan/server/internal/api/problem"
	"github.com/nirvachan/server/internal/domain/events"
	"github.com/nirvachan/server/internal/domain/users"
)

type UsersHandler struct {
	Service *users.Service
	Events  *events.Service
	Env     string
}

func NewUsersHandler(service *users.Service, eventsService *events.Service, env string) *UsersHandler {
	return &UsersHandler{Service: service, Events: eventsService, Env: env}
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	payload := map[string]any{
		"id":              user.ID,
		"phone":           user.Phone,
		"name":            user.Name,
		"role":            user.Role,
		"constituency_id": user.ConstituencyID,
		"created_at":      nil,
	}
	if !user.CreatedAt.IsZero() {
		payload["created_at"] = user.CreatedAt.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, payload)
}

type userUpdateRequest struct {
	Name           *string `json:"name"`
	ConstituencyID *string `json:"constituency_id"`
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	var body userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	updated, err := h.Service.Update(r.Context(), user.ID, users.UpdateParams{
		Name:           body.Name,
		ConstituencyID: body.ConstituencyID,
	})
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    updated.ID,
		"phone": updated.Phone,
		"name":  updated.Name,
		"role":  updated.Role,
	})
}

func (h *UsersHandler) MyRSVPs(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	items, err := h.Events.ListUserRSVPs(r.Context(), user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	data := make([]map[string]any, 0, len(items))
	for _, event := range items {
		data = append(data, eventPayload(event))
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}
