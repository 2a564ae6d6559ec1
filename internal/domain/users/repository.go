package users

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

const DefaultRole = "citizen"

type User struct {
	ID             string
	Phone          string
	Name           *string
	Role           string
	ConstituencyID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UpdateParams struct {
	Name           *string
	ConstituencyID *string
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// Create inserts a user with the default citizen role.
	Create(ctx context.Context, id, phone string) (*User, error)
	Update(ctx context.Context, id string, params UpdateParams) (*User, error)
}

// IDFromPhone derives the stable user identity for a phone number, so that
// repeated logins with the same phone always resolve to the same user.
func IDFromPhone(phone string) string {
	sum := sha256.Sum256([]byte(phone))
	return hex.EncodeToString(sum[:])[:16]
}
