package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nirvachan/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

const userSelect = `
SELECT id, phone, name, role, constituency_id, created_at, updated_at
  FROM users`

func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	q := r.queryer()

	user, err := scanUser(q.QueryRow(ctx, userSelect+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, id, phone string) (*users.User, error) {
	q := r.queryer()

	user, err := scanUser(q.QueryRow(ctx, `
INSERT INTO users (id, phone, role, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id, phone, name, role, constituency_id, created_at, updated_at`,
		id, phone, users.DefaultRole))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, params users.UpdateParams) (*users.User, error) {
	q := r.queryer()

	user, err := scanUser(q.QueryRow(ctx, `
UPDATE users
   SET name = COALESCE($2, name),
       constituency_id = COALESCE($3, constituency_id),
       updated_at = now()
 WHERE id = $1
RETURNING id, phone, name, role, constituency_id, created_at, updated_at`,
		id, params.Name, params.ConstituencyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func scanUser(row pgx.Row) (users.User, error) {
	var user users.User
	err := row.Scan(
		&user.ID, &user.Phone, &user.Name, &user.Role,
		&user.ConstituencyID, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
