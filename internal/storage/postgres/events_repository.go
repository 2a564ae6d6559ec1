package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nirvachan/server/internal/api/pagination"
	"github.com/nirvachan/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

const eventSelect = `
SELECT e.id, e.title, e.title_nepali, e.event_type, e.status, e.description,
       e.start_time, e.end_time, e.speakers, e.expected_attendance, e.tags,
       e.party_id, e.constituency_id,
       v.name, v.address, ST_Y(v.location::geometry), ST_X(v.location::geometry),
       p.name, p.short_name, p.color,
       c.name, c.province, c.district, c.registered_voters,
       (SELECT count(*) FROM rsvps r WHERE r.event_id = e.id)::int AS rsvp_count`

const eventJoins = `
  FROM events e
  LEFT JOIN venues v ON v.id = e.venue_id
  LEFT JOIN parties p ON p.id = e.party_id
  LEFT JOIN constituencies c ON c.id = e.constituency_id`

// eventRow mirrors the eventSelect column list.
type eventRow struct {
	ID                 string
	Title              string
	TitleNepali        *string
	Type               string
	Status             string
	Description        *string
	StartTime          pgtype.Timestamptz
	EndTime            pgtype.Timestamptz
	Speakers           []string
	ExpectedAttendance int
	Tags               []string
	PartyID            *string
	ConstituencyID     *string
	VenueName          *string
	VenueAddress       *string
	VenueLat           *float64
	VenueLng           *float64
	PartyName          *string
	PartyShortName     *string
	PartyColor         *string
	ConstituencyName   *string
	Province           *string
	District           *string
	RegisteredVoters   *int
	RSVPCount          int

	Distance *float64
	UserRSVP *string
}

func (r *eventRow) dest() []any {
	return []any{
		&r.ID, &r.Title, &r.TitleNepali, &r.Type, &r.Status, &r.Description,
		&r.StartTime, &r.EndTime, &r.Speakers, &r.ExpectedAttendance, &r.Tags,
		&r.PartyID, &r.ConstituencyID,
		&r.VenueName, &r.VenueAddress, &r.VenueLat, &r.VenueLng,
		&r.PartyName, &r.PartyShortName, &r.PartyColor,
		&r.ConstituencyName, &r.Province, &r.District, &r.RegisteredVoters,
		&r.RSVPCount,
	}
}

func (r *eventRow) toEvent() events.Event {
	event := events.Event{
		ID:                 r.ID,
		Title:              r.Title,
		TitleNepali:        r.TitleNepali,
		Type:               r.Type,
		Status:             r.Status,
		Description:        r.Description,
		Speakers:           r.Speakers,
		ExpectedAttendance: r.ExpectedAttendance,
		RSVPCount:          r.RSVPCount,
		Tags:               r.Tags,
		PartyID:            r.PartyID,
		ConstituencyID:     r.ConstituencyID,
		DistanceMeters:     r.Distance,
		UserRSVP:           r.UserRSVP,
	}
	if r.StartTime.Valid {
		event.StartTime = r.StartTime.Time
	}
	if r.EndTime.Valid {
		value := r.EndTime.Time
		event.EndTime = &value
	}
	if r.VenueName != nil {
		event.Venue = &events.Venue{
			Name:    *r.VenueName,
			Address: derefString(r.VenueAddress),
			Lat:     r.VenueLat,
			Lng:     r.VenueLng,
		}
	}
	if r.PartyName != nil && r.PartyID != nil {
		event.Party = &events.PartyRef{
			ID:        *r.PartyID,
			Name:      *r.PartyName,
			ShortName: derefString(r.PartyShortName),
			Color:     derefString(r.PartyColor),
		}
	}
	if r.ConstituencyName != nil && r.ConstituencyID != nil {
		ref := &events.ConstituencyRef{
			ID:       *r.ConstituencyID,
			Name:     *r.ConstituencyName,
			Province: derefString(r.Province),
			District: derefString(r.District),
		}
		if r.RegisteredVoters != nil {
			ref.RegisteredVoters = *r.RegisteredVoters
		}
		event.Constituency = ref
	}
	return event
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, sort events.Sort, page pagination.Page) (events.ListResult, error) {
	q := r.queryer()

	cond := eventConditions(filters)
	where := cond.where()
	countArgs := append([]any(nil), cond.args...)

	var total int
	if err := q.QueryRow(ctx, "SELECT count(*)"+eventJoins+where, countArgs...).Scan(&total); err != nil {
		return events.ListResult{}, fmt.Errorf("count events: %w", err)
	}

	pageSQL := eventSelect + eventJoins + where + eventOrderBy(sort) +
		" LIMIT " + cond.next(page.PerPage) + " OFFSET " + cond.next(page.Offset())

	rows, err := q.Query(ctx, pageSQL, cond.args...)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0, page.PerPage)
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(row.dest()...); err != nil {
			return events.ListResult{}, fmt.Errorf("scan events: %w", err)
		}
		items = append(items, row.toEvent())
	}
	if err := rows.Err(); err != nil {
		return events.ListResult{}, fmt.Errorf("iterate events: %w", err)
	}

	return events.ListResult{Events: items, Total: total}, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	q := r.queryer()

	var row eventRow
	err := q.QueryRow(ctx, eventSelect+eventJoins+" WHERE e.id = $1", id).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	event := row.toEvent()
	return &event, nil
}

func (r *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	q := r.queryer()

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("event exists: %w", err)
	}
	return exists, nil
}

// Nearby relies on the store's geography predicates: ST_DWithin bounds the
// candidate set and ST_Distance orders it. Results are truncated at
// query.Limit with no offset or total.
func (r *EventRepository) Nearby(ctx context.Context, query events.NearbyQuery) ([]events.Event, error) {
	q := r.queryer()

	rows, err := q.Query(ctx, eventSelect+`,
       ST_Distance(v.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance_meters
  FROM events e
  JOIN venues v ON v.id = e.venue_id
  LEFT JOIN parties p ON p.id = e.party_id
  LEFT JOIN constituencies c ON c.id = e.constituency_id
 WHERE ST_DWithin(v.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
 ORDER BY distance_meters ASC
 LIMIT $4`,
		query.Lng, query.Lat, query.RadiusMeters, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("nearby events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0, query.Limit)
	for rows.Next() {
		var row eventRow
		dest := append(row.dest(), &row.Distance)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan nearby events: %w", err)
		}
		items = append(items, row.toEvent())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nearby events: %w", err)
	}
	return items, nil
}

func (r *EventRepository) UpsertRSVP(ctx context.Context, userID, eventID, status string) error {
	q := r.queryer()

	_, err := q.Exec(ctx, `
INSERT INTO rsvps (user_id, event_id, status, created_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id, event_id) DO UPDATE SET status = EXCLUDED.status`,
		userID, eventID, status)
	if err != nil {
		return fmt.Errorf("upsert rsvp: %w", err)
	}
	return nil
}

func (r *EventRepository) DeleteRSVP(ctx context.Context, userID, eventID string) error {
	q := r.queryer()

	if _, err := q.Exec(ctx, `DELETE FROM rsvps WHERE user_id = $1 AND event_id = $2`, userID, eventID); err != nil {
		return fmt.Errorf("delete rsvp: %w", err)
	}
	return nil
}

func (r *EventRepository) UserRSVPs(ctx context.Context, userID string, eventIDs []string) (map[string]string, error) {
	q := r.queryer()

	rows, err := q.Query(ctx, `SELECT event_id, status FROM rsvps WHERE user_id = $1 AND event_id = ANY($2)`, userID, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("user rsvps: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]string)
	for rows.Next() {
		var eventID, status string
		if err := rows.Scan(&eventID, &status); err != nil {
			return nil, fmt.Errorf("scan user rsvps: %w", err)
		}
		statuses[eventID] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rsvps: %w", err)
	}
	return statuses, nil
}

func (r *EventRepository) ListRSVPed(ctx context.Context, userID string) ([]events.Event, error) {
	q := r.queryer()

	rows, err := q.Query(ctx, eventSelect+`,
       r.status AS user_rsvp
  FROM events e
  JOIN rsvps r ON r.event_id = e.id
  LEFT JOIN venues v ON v.id = e.venue_id
  LEFT JOIN parties p ON p.id = e.party_id
  LEFT JOIN constituencies c ON c.id = e.constituency_id
 WHERE r.user_id = $1
 ORDER BY e.start_time ASC, e.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list rsvped events: %w", err)
	}
	defer rows.Close()

	var items []events.Event
	for rows.Next() {
		var row eventRow
		dest := append(row.dest(), &row.UserRSVP)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan rsvped events: %w", err)
		}
		items = append(items, row.toEvent())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rsvped events: %w", err)
	}
	return items, nil
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
