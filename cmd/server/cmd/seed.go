package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample data for local development",
	Long: `Insert a small set of parties, constituencies, venues, and events so the
API has data to serve during local development. Running seed twice is safe;
existing rows are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		if err := seed(ctx, pool); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sample data loaded")
		return nil
	},
}

type seedParty struct {
	id, name, nameNepali, shortName, color, ideology, leader string
	founded                                                  int
}

type seedConstituency struct {
	id, name, nameNepali, province, district string
	voters                                   int
	centerLat, centerLng                     float64
	south, west, north, east                 float64
}

type seedEvent struct {
	title, titleNepali, eventType string
	partyID, constituencyID       string
	venueName, venueAddress       string
	venueLat, venueLng            float64
	daysAhead                     int
	expectedAttendance            int
	speakers, tags                []string
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	parties := []seedParty{
		{"nc", "Nepali Congress", "नेपाली कांग्रेस", "NC", "#2ECC71", "Social democracy", "Sher Bahadur Deuba", 1950},
		{"uml", "CPN-UML", "नेकपा एमाले", "UML", "#E74C3C", "Marxism-Leninism", "KP Sharma Oli", 1991},
		{"rsp", "Rastriya Swatantra Party", "राष्ट्रिय स्वतन्त्र पार्टी", "RSP", "#3498DB", "Centrism", "Rabi Lamichhane", 2022},
	}
	for _, p := range parties {
		_, err := pool.Exec(ctx, `
INSERT INTO parties (id, name, name_nepali, short_name, color, ideology, leader, founded)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`,
			p.id, p.name, p.nameNepali, p.shortName, p.color, p.ideology, p.leader, p.founded)
		if err != nil {
			return fmt.Errorf("seed party %s: %w", p.id, err)
		}
	}

	constituencies := []seedConstituency{
		{"ktm-1", "Kathmandu 1", "काठमाडौं १", "Bagmati", "Kathmandu", 48000, 27.710, 85.315, 27.68, 85.28, 27.74, 85.35},
		{"ktm-4", "Kathmandu 4", "काठमाडौं ४", "Bagmati", "Kathmandu", 52000, 27.735, 85.340, 27.71, 85.31, 27.76, 85.37},
		{"ltp-3", "Lalitpur 3", "ललितपुर ३", "Bagmati", "Lalitpur", 45000, 27.660, 85.320, 27.63, 85.29, 27.69, 85.35},
	}
	for _, c := range constituencies {
		polygon := fmt.Sprintf("POLYGON((%[2]f %[1]f, %[4]f %[1]f, %[4]f %[3]f, %[2]f %[3]f, %[2]f %[1]f))",
			c.south, c.west, c.north, c.east)
		_, err := pool.Exec(ctx, `
INSERT INTO constituencies (id, name, name_nepali, province, district, registered_voters, center, bounds)
VALUES ($1, $2, $3, $4, $5, $6,
        ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography,
        ST_GeomFromText($9, 4326)::geography)
ON CONFLICT (id) DO NOTHING`,
			c.id, c.name, c.nameNepali, c.province, c.district, c.voters, c.centerLng, c.centerLat, polygon)
		if err != nil {
			return fmt.Errorf("seed constituency %s: %w", c.id, err)
		}
	}

	// Events get fresh ULIDs on insert, so reseeding would duplicate them.
	var eventCount int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&eventCount); err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if eventCount > 0 {
		return nil
	}

	events := []seedEvent{
		{
			title: "Youth Rally Tundikhel", titleNepali: "युवा र्‍याली टुँडिखेल", eventType: "rally",
			partyID: "rsp", constituencyID: "ktm-1",
			venueName: "Tundikhel Ground", venueAddress: "Tundikhel, Kathmandu",
			venueLat: 27.7025, venueLng: 85.3145,
			daysAhead: 3, expectedAttendance: 15000,
			speakers: []string{"Rabi Lamichhane"}, tags: []string{"youth", "kathmandu"},
		},
		{
			title: "Ward Townhall Patan", titleNepali: "टाउन हल पाटन", eventType: "townhall",
			partyID: "nc", constituencyID: "ltp-3",
			venueName: "Patan Durbar Square", venueAddress: "Mangal Bazaar, Lalitpur",
			venueLat: 27.6727, venueLng: 85.3250,
			daysAhead: 5, expectedAttendance: 800,
			speakers: []string{"Sher Bahadur Deuba"}, tags: []string{"townhall"},
		},
		{
			title: "Party Workers Assembly", titleNepali: "कार्यकर्ता सभा", eventType: "assembly",
			partyID: "uml", constituencyID: "ktm-4",
			venueName: "Rastriya Sabha Griha", venueAddress: "Exhibition Road, Kathmandu",
			venueLat: 27.6980, venueLng: 85.3170,
			daysAhead: 7, expectedAttendance: 3000,
			speakers: []string{"KP Sharma Oli"}, tags: []string{"assembly", "workers"},
		},
	}
	for _, e := range events {
		venueID := ulid.Make().String()
		_, err := pool.Exec(ctx, `
INSERT INTO venues (id, name, address, location)
VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography)`,
			venueID, e.venueName, e.venueAddress, e.venueLng, e.venueLat)
		if err != nil {
			return fmt.Errorf("seed venue %s: %w", e.venueName, err)
		}

		start := time.Now().AddDate(0, 0, e.daysAhead).Truncate(time.Hour)
		end := start.Add(3 * time.Hour)
		_, err = pool.Exec(ctx, `
INSERT INTO events (id, title, title_nepali, event_type, status, start_time, end_time,
                    speakers, expected_attendance, tags, venue_id, party_id, constituency_id)
VALUES ($1, $2, $3, $4, 'confirmed', $5, $6, $7, $8, $9, $10, $11, $12)`,
			ulid.Make().String(), e.title, e.titleNepali, e.eventType, start, end,
			e.speakers, e.expectedAttendance, e.tags, venueID, e.partyID, e.constituencyID)
		if err != nil {
			return fmt.Errorf("seed event %s: %w", e.title, err)
		}
	}

	return nil
}
