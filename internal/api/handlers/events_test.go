package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nirvachan/server/internal/api/middleware"
	"github.com/nirvachan/server/internal/api/pagination"
	"github.com/nirvachan/server/internal/domain/events"
	"github.com/nirvachan/server/internal/domain/users"
)

type fakeEventRepo struct {
	events map[string]events.Event
	rsvps  map[[2]string]string
	nearby []events.Event
}

func newFakeEventRepo(items ...events.Event) *fakeEventRepo {
	repo := &fakeEventRepo{
		events: make(map[string]events.Event),
		rsvps:  make(map[[2]string]string),
	}
	for _, item := range items {
		repo.events[item.ID] = item
	}
	return repo
}

func (f *fakeEventRepo) List(_ context.Context, _ events.Filters, sortBy events.Sort, _ pagination.Page) (events.ListResult, error) {
	items := make([]events.Event, 0, len(f.events))
	for _, item := range f.events {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if sortBy.Descending {
			return items[i].StartTime.After(items[j].StartTime)
		}
		return items[i].StartTime.Before(items[j].StartTime)
	})
	return events.ListResult{Events: items, Total: len(items)}, nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*events.Event, error) {
	item, ok := f.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &item, nil
}

func (f *fakeEventRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.events[id]
	return ok, nil
}

func (f *fakeEventRepo) Nearby(_ context.Context, _ events.NearbyQuery) ([]events.Event, error) {
	return f.nearby, nil
}

func (f *fakeEventRepo) UpsertRSVP(_ context.Context, userID, eventID, status string) error {
	f.rsvps[[2]string{userID, eventID}] = status
	return nil
}

func (f *fakeEventRepo) DeleteRSVP(_ context.Context, userID, eventID string) error {
	delete(f.rsvps, [2]string{userID, eventID})
	return nil
}

func (f *fakeEventRepo) UserRSVPs(_ context.Context, userID string, eventIDs []string) (map[string]string, error) {
	statuses := make(map[string]string)
	for _, id := range eventIDs {
		if status, ok := f.rsvps[[2]string{userID, id}]; ok {
			statuses[id] = status
		}
	}
	return statuses, nil
}

func (f *fakeEventRepo) ListRSVPed(_ context.Context, userID string) ([]events.Event, error) {
	var items []events.Event
	for key, status := range f.rsvps {
		if key[0] != userID {
			continue
		}
		item := f.events[key[1]]
		value := status
		item.UserRSVP = &value
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StartTime.Before(items[j].StartTime) })
	return items, nil
}

func sampleEvent(id string) events.Event {
	lat, lng := 27.7025, 85.3145
	return events.Event{
		ID:        id,
		Title:     "Youth Rally",
		Type:      "rally",
		Status:    "confirmed",
		StartTime: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Venue:     &events.Venue{Name: "Tundikhel Ground", Address: "Kathmandu", Lat: &lat, Lng: &lng},
	}
}

func authedRequest(method, target string, body string, user *users.User) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if user != nil {
		req = req.WithContext(middleware.WithCurrentUser(req.Context(), user))
	}
	return req
}

func TestEventsListEnvelope(t *testing.T) {
	repo := newFakeEventRepo(sampleEvent("ev1"), sampleEvent("ev2"))
	handler := NewEventsHandler(events.NewService(repo), "test")

	req := httptest.NewRequest("GET", "/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			PerPage    int `json:"per_page"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	require.Equal(t, 1, body.Pagination.Page)
	require.Equal(t, 20, body.Pagination.PerPage)
	require.Equal(t, 2, body.Pagination.Total)
	require.Equal(t, 1, body.Pagination.TotalPages)

	// user_rsvp must be present and null for anonymous viewers
	first := body.Data[0]
	value, present := first["user_rsvp"]
	require.True(t, present)
	require.Nil(t, value)
	require.Equal(t, "rally", first["type"])
}

func TestEventsListRejectsBadPage(t *testing.T) {
	handler := NewEventsHandler(events.NewService(newFakeEventRepo()), "test")

	req := httptest.NewRequest("GET", "/v1/events?page=0", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestEventsGetNotFound(t *testing.T) {
	handler := NewEventsHandler(events.NewService(newFakeEventRepo()), "test")

	req := httptest.NewRequest("GET", "/v1/events/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventsGetVenueCoordinates(t *testing.T) {
	repo := newFakeEventRepo(sampleEvent("ev1"))
	handler := NewEventsHandler(events.NewService(repo), "test")

	req := httptest.NewRequest("GET", "/v1/events/ev1", nil)
	req.SetPathValue("id", "ev1")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	venue := body["venue"].(map[string]any)
	coords := venue["coordinates"].([]any)
	require.Equal(t, 27.7025, coords[0])
	require.Equal(t, 85.3145, coords[1])
}

func TestRSVPRequiresAuth(t *testing.T) {
	handler := NewEventsHandler(events.NewService(newFakeEventRepo(sampleEvent("ev1"))), "test")

	req := httptest.NewRequest("POST", "/v1/events/ev1/rsvp", nil)
	req.SetPathValue("id", "ev1")
	rec := httptest.NewRecorder()
	handler.RSVP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRSVPDefaultsToGoing(t *testing.T) {
	repo := newFakeEventRepo(sampleEvent("ev1"))
	handler := NewEventsHandler(events.NewService(repo), "test")
	user := &users.User{ID: "u1", Phone: "9800000001", Role: users.DefaultRole}

	req := authedRequest("POST", "/v1/events/ev1/rsvp", "", user)
	req.SetPathValue("id", "ev1")
	rec := httptest.NewRecorder()
	handler.RSVP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "going", repo.rsvps[[2]string{"u1", "ev1"}])

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "going", body["user_rsvp"])
}

func TestRSVPUnknownEvent(t *testing.T) {
	handler := NewEventsHandler(events.NewService(newFakeEventRepo()), "test")
	user := &users.User{ID: "u1", Role: users.DefaultRole}

	req := authedRequest("POST", "/v1/events/nope/rsvp", `{"status":"going"}`, user)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	handler.RSVP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelRSVPIsIdempotent(t *testing.T) {
	repo := newFakeEventRepo(sampleEvent("ev1"))
	handler := NewEventsHandler(events.NewService(repo), "test")
	user := &users.User{ID: "u1", Role: users.DefaultRole}

	for i := 0; i < 2; i++ {
		req := authedRequest("DELETE", "/v1/events/ev1/rsvp", "", user)
		req.SetPathValue("id", "ev1")
		rec := httptest.NewRecorder()
		handler.CancelRSVP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "cancelled", body["status"])
	}
}

func TestNearbyEnvelope(t *testing.T) {
	repo := newFakeEventRepo()
	distance := 1234.56
	withDistance := sampleEvent("ev1")
	withDistance.DistanceMeters = &distance
	repo.nearby = []events.Event{withDistance}

	handler := NewEventsHandler(events.NewService(repo), "test")

	req := httptest.NewRequest("GET", "/v1/events/nearby?lat=27.7&lng=85.3", nil)
	rec := httptest.NewRecorder()
	handler.Nearby(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data   []map[string]any   `json:"data"`
		Center map[string]float64 `json:"center"`
		Radius int                `json:"radius_meters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, 1234.56, body.Data[0]["distance_meters"])
	require.Equal(t, 27.7, body.Center["lat"])
	require.Equal(t, 5000, body.Radius)
}

func TestNearbyRequiresCoordinates(t *testing.T) {
	handler := NewEventsHandler(events.NewService(newFakeEventRepo()), "test")

	req := httptest.NewRequest("GET", "/v1/events/nearby", nil)
	rec := httptest.NewRecorder()
	handler.Nearby(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
