package events

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nirvachan/server/internal/api/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List runs the filtered, sorted, paginated catalog query. viewerID is the
// authenticated user's ID or "" for anonymous callers; when present, each
// returned event carries the viewer's own RSVP status.
func (s *Service) List(ctx context.Context, filters Filters, sort Sort, page pagination.Page, viewerID string) (ListResult, error) {
	result, err := s.repo.List(ctx, filters, sort, page)
	if err != nil {
		return ListResult{}, err
	}
	if err := s.annotateUserRSVPs(ctx, viewerID, result.Events); err != nil {
		return ListResult{}, err
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id string, viewerID string) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID != "" {
		statuses, err := s.repo.UserRSVPs(ctx, viewerID, []string{event.ID})
		if err != nil {
			return nil, err
		}
		if status, ok := statuses[event.ID]; ok {
			event.UserRSVP = &status
		}
	}
	return event, nil
}

// Nearby returns events whose venue lies within the query radius, ordered
// by ascending distance from the center. Distances are rounded to
// centimeter precision.
func (s *Service) Nearby(ctx context.Context, query NearbyQuery) ([]Event, error) {
	items, err := s.repo.Nearby(ctx, query)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].DistanceMeters != nil {
			rounded := math.Round(*items[i].DistanceMeters*100) / 100
			items[i].DistanceMeters = &rounded
		}
	}
	return items, nil
}

// SetRSVP upserts the (user, event) RSVP row and returns the enriched event
// with UserRSVP forced to the just-written status.
func (s *Service) SetRSVP(ctx context.Context, userID, eventID, status string) (*Event, error) {
	exists, err := s.repo.Exists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	if err := s.repo.UpsertRSVP(ctx, userID, eventID, status); err != nil {
		return nil, err
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	event.UserRSVP = &status
	return event, nil
}

// CancelRSVP removes the user's RSVP for the event. Cancelling when no RSVP
// exists is a no-op.
func (s *Service) CancelRSVP(ctx context.Context, userID, eventID string) error {
	return s.repo.DeleteRSVP(ctx, userID, eventID)
}

func (s *Service) ListUserRSVPs(ctx context.Context, userID string) ([]Event, error) {
	return s.repo.ListRSVPed(ctx, userID)
}

func (s *Service) annotateUserRSVPs(ctx context.Context, viewerID string, items []Event) error {
	if viewerID == "" || len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	statuses, err := s.repo.UserRSVPs(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if status, ok := statuses[items[i].ID]; ok {
			value := status
			items[i].UserRSVP = &value
		}
	}
	return nil
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseFilters reads the listing query parameters. status defaults to
// "confirmed" when the parameter is absent; an explicitly empty status
// disables the filter. An unrecognized sort key falls back to ascending
// datetime rather than failing.
func ParseFilters(values url.Values) (Filters, Sort, pagination.Page, error) {
	filters := Filters{}
	sort := Sort{Key: SortKeyStartTime}

	page, err := pagination.Parse(values)
	if err != nil {
		return filters, sort, page, err
	}

	filters.ConstituencyID = strings.TrimSpace(values.Get("constituency_id"))
	filters.PartyID = strings.TrimSpace(values.Get("party_id"))

	filters.Type = strings.TrimSpace(values.Get("event_type"))
	if filters.Type != "" && !IsAllowedType(filters.Type) {
		return filters, sort, page, FilterError{Field: "event_type", Message: "unsupported event type"}
	}

	if values.Has("status") {
		filters.Status = strings.TrimSpace(values.Get("status"))
	} else {
		filters.Status = "confirmed"
	}

	dateFrom, err := parseDate("date_from", values.Get("date_from"))
	if err != nil {
		return filters, sort, page, err
	}
	dateTo, err := parseDate("date_to", values.Get("date_to"))
	if err != nil {
		return filters, sort, page, err
	}
	if dateFrom != nil && dateTo != nil && dateTo.Before(*dateFrom) {
		return filters, sort, page, FilterError{Field: "date_to", Message: "must be on or after date_from"}
	}
	filters.DateFrom = dateFrom
	filters.DateTo = dateTo

	filters.Search = strings.TrimSpace(values.Get("search"))

	sort = ParseSort(values.Get("sort"))

	return filters, sort, page, nil
}

// ParseSort interprets a sort key, with a "-" prefix for descending order.
// Only datetime and rsvp_count are sortable; anything else falls back to
// ascending datetime.
func ParseSort(value string) Sort {
	value = strings.TrimSpace(value)
	sort := Sort{Key: SortKeyStartTime}
	if value == "" {
		return sort
	}
	key := value
	if strings.HasPrefix(value, "-") {
		key = value[1:]
		sort.Descending = true
	}
	switch key {
	case SortKeyStartTime, SortKeyRSVPCount:
		sort.Key = key
	default:
		return Sort{Key: SortKeyStartTime}
	}
	return sort
}

const (
	MinRadiusMeters     = 100
	MaxRadiusMeters     = 50000
	DefaultRadiusMeters = 5000
)

// ParseNearby reads and validates the nearby-search query parameters.
func ParseNearby(values url.Values) (NearbyQuery, error) {
	query := NearbyQuery{RadiusMeters: DefaultRadiusMeters, Limit: pagination.DefaultPerPage}

	lat, err := parseCoordinate("lat", values.Get("lat"), 90)
	if err != nil {
		return query, err
	}
	lng, err := parseCoordinate("lng", values.Get("lng"), 180)
	if err != nil {
		return query, err
	}
	query.Lat = lat
	query.Lng = lng

	if raw := strings.TrimSpace(values.Get("radius")); raw != "" {
		radius, err := strconv.Atoi(raw)
		if err != nil {
			return query, FilterError{Field: "radius", Message: "must be a number"}
		}
		if radius < MinRadiusMeters || radius > MaxRadiusMeters {
			return query, FilterError{Field: "radius", Message: fmt.Sprintf("must be between %d and %d meters", MinRadiusMeters, MaxRadiusMeters)}
		}
		query.RadiusMeters = radius
	}

	page, err := pagination.Parse(values)
	if err != nil {
		return query, err
	}
	query.Limit = page.PerPage

	return query, nil
}

func parseCoordinate(field, value string, bound float64) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, FilterError{Field: field, Message: "is required"}
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, FilterError{Field: field, Message: "must be a number"}
	}
	if parsed < -bound || parsed > bound {
		return 0, FilterError{Field: field, Message: fmt.Sprintf("must be between %.0f and %.0f", -bound, bound)}
	}
	return parsed, nil
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, FilterError{Field: field, Message: "must be an ISO8601 date"}
}

// IsAllowedType reports whether the value is one of the catalog event types.
func IsAllowedType(value string) bool {
	switch value {
	case "rally", "townhall", "march", "meeting", "assembly", "canvassing", "conference", "debate":
		return true
	default:
		return false
	}
}
