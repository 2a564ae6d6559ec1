package storage

import (
	"context"

	"github.com/nirvachan/server/internal/domain/constituencies"
	"github.com/nirvachan/server/internal/domain/events"
	"github.com/nirvachan/server/internal/domain/parties"
	"github.com/nirvachan/server/internal/domain/users"
)

// Repository groups data access by domain.
type Repository interface {
	Events() events.Repository
	Parties() parties.Repository
	Constituencies() constituencies.Repository
	Users() users.Repository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
