package constituencies

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("constituency not found")

// Constituency is an electoral district with an optional boundary polygon
// used for point-in-polygon detection.
type Constituency struct {
	ID               string
	Name             string
	NameNepali       *string
	Province         string
	District         string
	Type             string
	RegisteredVoters int
	CenterLat        *float64
	CenterLng        *float64
	// Bounds is the [southwest, northeast] corner pair of the boundary
	// polygon's envelope, nil when no boundary is stored.
	Bounds *[2][2]float64
}

type Filters struct {
	Province string
	District string
}

type Repository interface {
	// List returns constituencies matching the filters, ordered by name.
	List(ctx context.Context, filters Filters) ([]Constituency, error)
	GetByID(ctx context.Context, id string) (*Constituency, error)

	// DetectByPoint returns the constituency whose boundary polygon contains
	// the point. When boundaries overlap the first row the containment scan
	// yields wins; the scan order is not defined. Returns ErrNotFound when
	// no polygon contains the point.
	DetectByPoint(ctx context.Context, lat, lng float64) (*Constituency, error)
}
