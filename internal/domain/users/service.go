package users

import (
	"context"
	"errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate resolves the user for a phone number, creating it lazily on
// first login. Creation is keyed by the phone-derived identity, so two
// verifications for the same phone can never produce two users.
func (s *Service) GetOrCreate(ctx context.Context, phone string) (*User, error) {
	id := IDFromPhone(phone)
	user, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.repo.Create(ctx, id, phone)
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial profile update. With no fields set it returns
// the current record untouched.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*User, error) {
	if params.Name == nil && params.ConstituencyID == nil {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, params)
}
