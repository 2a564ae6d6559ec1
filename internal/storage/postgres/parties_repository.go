package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nirvachan/server/internal/domain/parties"
)

var _ parties.Repository = (*PartyRepository)(nil)

const partySelect = `
SELECT id, name, name_nepali, short_name, color, ideology, leader, founded,
       symbol, website, logo_url
  FROM parties`

func (r *PartyRepository) List(ctx context.Context) ([]parties.Party, error) {
	q := r.queryer()

	rows, err := q.Query(ctx, partySelect+" ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	var items []parties.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan parties: %w", err)
		}
		items = append(items, party)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parties: %w", err)
	}
	return items, nil
}

func (r *PartyRepository) GetByID(ctx context.Context, id string) (*parties.Party, error) {
	q := r.queryer()

	party, err := scanParty(q.QueryRow(ctx, partySelect+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, parties.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get party: %w", err)
	}
	return &party, nil
}

func scanParty(row pgx.Row) (parties.Party, error) {
	var party parties.Party
	err := row.Scan(
		&party.ID, &party.Name, &party.NameNepali, &party.ShortName, &party.Color,
		&party.Ideology, &party.Leader, &party.Founded,
		&party.Symbol, &party.Website, &party.LogoURL,
	)
	return party, err
}

func (r *PartyRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
