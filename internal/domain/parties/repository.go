package parties

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("party not found")

// Party is immutable reference data for the election cycle.
type Party struct {
	ID         string
	Name       string
	NameNepali *string
	ShortName  string
	Color      *string
	Ideology   *string
	Leader     *string
	Founded    *int
	Symbol     *string
	Website    *string
	LogoURL    *string
}

type Repository interface {
	// List returns all parties ordered by name.
	List(ctx context.Context) ([]Party, error)
	GetByID(ctx context.Context, id string) (*Party, error)
}
