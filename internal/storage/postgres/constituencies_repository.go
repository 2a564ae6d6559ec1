package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nirvachan/server/internal/domain/constituencies"
)

var _ constituencies.Repository = (*ConstituencyRepository)(nil)

// The bounds geography is reduced to its envelope on the way out. The API
// exposes [[south, west], [north, east]] corner pairs, not full polygons.
const constituencySelect = `
SELECT id, name, name_nepali, province, district, constituency_type, registered_voters,
       ST_Y(center::geometry), ST_X(center::geometry),
       ST_YMin(bounds::geometry), ST_XMin(bounds::geometry),
       ST_YMax(bounds::geometry), ST_XMax(bounds::geometry)
  FROM constituencies`

func (r *ConstituencyRepository) List(ctx context.Context, filters constituencies.Filters) ([]constituencies.Constituency, error) {
	q := r.queryer()

	cond := constituencyConditions(filters)

	rows, err := q.Query(ctx, constituencySelect+cond.where()+" ORDER BY name ASC", cond.args...)
	if err != nil {
		return nil, fmt.Errorf("list constituencies: %w", err)
	}
	defer rows.Close()

	var items []constituencies.Constituency
	for rows.Next() {
		constituency, err := scanConstituency(rows)
		if err != nil {
			return nil, fmt.Errorf("scan constituencies: %w", err)
		}
		items = append(items, constituency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate constituencies: %w", err)
	}
	return items, nil
}

func (r *ConstituencyRepository) GetByID(ctx context.Context, id string) (*constituencies.Constituency, error) {
	q := r.queryer()

	constituency, err := scanConstituency(q.QueryRow(ctx, constituencySelect+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, constituencies.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get constituency: %w", err)
	}
	return &constituency, nil
}

func (r *ConstituencyRepository) DetectByPoint(ctx context.Context, lat, lng float64) (*constituencies.Constituency, error) {
	q := r.queryer()

	constituency, err := scanConstituency(q.QueryRow(ctx, constituencySelect+`
 WHERE ST_Contains(bounds::geometry, ST_SetSRID(ST_MakePoint($1, $2), 4326))
 LIMIT 1`, lng, lat))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, constituencies.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("detect constituency: %w", err)
	}
	return &constituency, nil
}

func scanConstituency(row pgx.Row) (constituencies.Constituency, error) {
	var (
		constituency             constituencies.Constituency
		south, west, north, east *float64
	)
	err := row.Scan(
		&constituency.ID, &constituency.Name, &constituency.NameNepali,
		&constituency.Province, &constituency.District, &constituency.Type,
		&constituency.RegisteredVoters,
		&constituency.CenterLat, &constituency.CenterLng,
		&south, &west, &north, &east,
	)
	if err != nil {
		return constituency, err
	}
	if south != nil && west != nil && north != nil && east != nil {
		constituency.Bounds = &[2][2]float64{{*south, *west}, {*north, *east}}
	}
	return constituency, nil
}

func (r *ConstituencyRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
