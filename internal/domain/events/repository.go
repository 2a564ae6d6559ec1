package events

import (
	"context"
	"errors"
	"time"

	"github.com/nirvachan/server/internal/api/pagination"
)

var ErrNotFound = errors.New("event not found")

// Event is the enriched catalog row: the event itself plus the venue,
// party, and constituency context the listing endpoints serve.
type Event struct {
	ID                 string
	Title              string
	TitleNepali        *string
	Type               string
	Status             string
	Description        *string
	StartTime          time.Time
	EndTime            *time.Time
	Speakers           []string
	ExpectedAttendance int
	RSVPCount          int
	Tags               []string
	PartyID            *string
	ConstituencyID     *string
	Venue              *Venue
	Party              *PartyRef
	Constituency       *ConstituencyRef

	// DistanceMeters is set only by Nearby.
	DistanceMeters *float64
	// UserRSVP is the viewer's own RSVP status, nil when anonymous or
	// when no RSVP exists.
	UserRSVP *string
}

type Venue struct {
	Name    string
	Address string
	Lat     *float64
	Lng     *float64
}

type PartyRef struct {
	ID        string
	Name      string
	ShortName string
	Color     string
}

type ConstituencyRef struct {
	ID               string
	Name             string
	Province         string
	District         string
	RegisteredVoters int
}

type Filters struct {
	ConstituencyID string
	PartyID        string
	Type           string
	Status         string
	Search         string
	DateFrom       *time.Time
	DateTo         *time.Time
}

type Sort struct {
	Key        string
	Descending bool
}

const (
	SortKeyStartTime = "datetime"
	SortKeyRSVPCount = "rsvp_count"
)

type NearbyQuery struct {
	Lat          float64
	Lng          float64
	RadiusMeters int
	Limit        int
}

type ListResult struct {
	Events []Event
	Total  int
}

type Repository interface {
	List(ctx context.Context, filters Filters, sort Sort, page pagination.Page) (ListResult, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Exists(ctx context.Context, id string) (bool, error)

	// Nearby returns events with venues inside the radius, nearest first,
	// truncated at query.Limit. There is no offset or total count.
	Nearby(ctx context.Context, query NearbyQuery) ([]Event, error)

	// UpsertRSVP writes the single (user, event) RSVP row, overwriting the
	// status if the row already exists.
	UpsertRSVP(ctx context.Context, userID, eventID, status string) error
	// DeleteRSVP removes the (user, event) row; deleting a missing row is
	// not an error.
	DeleteRSVP(ctx context.Context, userID, eventID string) error
	// UserRSVPs returns the user's RSVP status for each of the given events,
	// keyed by event ID; events without an RSVP are absent from the map.
	UserRSVPs(ctx context.Context, userID string, eventIDs []string) (map[string]string, error)
	// ListRSVPed returns every event the user has RSVPed to, ordered by
	// start time, with UserRSVP populated.
	ListRSVPed(ctx context.Context, userID string) ([]Event, error)
}
