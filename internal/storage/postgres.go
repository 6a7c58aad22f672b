package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// PostgresJourneyStore implements JourneyStore using PostgreSQL.
type PostgresJourneyStore struct {
	pool *pgxpool.Pool
}

// NewPostgresJourneyStore creates a PostgreSQL-backed journey store.
func NewPostgresJourneyStore(pool *pgxpool.Pool) *PostgresJourneyStore {
	return &PostgresJourneyStore{pool: pool}
}

// EnsureSchema creates the touchpoint table when it does not exist.
func (r *PostgresJourneyStore) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS touchpoints (
			id          UUID PRIMARY KEY,
			user_id     TEXT NOT NULL,
			session_id  TEXT NOT NULL DEFAULT '',
			platform    TEXT NOT NULL,
			campaign_id TEXT NOT NULL,
			ad_id       TEXT NOT NULL DEFAULT '',
			event_type  TEXT NOT NULL,
			ts          TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS touchpoints_user_ts_idx ON touchpoints (user_id, ts);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure touchpoint schema: %w", err)
	}
	return nil
}

// SaveTouchpoint persists one touchpoint.
func (r *PostgresJourneyStore) SaveTouchpoint(ctx context.Context, userID, sessionID string, tp models.Touchpoint) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO touchpoints (id, user_id, session_id, platform, campaign_id, ad_id, event_type, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.New(), userID, sessionID, string(tp.Platform), tp.CampaignID, tp.AdID, string(tp.EventType), tp.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save touchpoint: %w", err)
	}
	return nil
}

// GetTouchpoints returns the user's touchpoints ascending by timestamp
// with positions assigned.
func (r *PostgresJourneyStore) GetTouchpoints(ctx context.Context, userID string) ([]models.Touchpoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT platform, campaign_id, ad_id, event_type, ts
		FROM touchpoints WHERE user_id = $1 ORDER BY ts ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query touchpoints: %w", err)
	}
	defer rows.Close()

	var touchpoints []models.Touchpoint
	for rows.Next() {
		var tp models.Touchpoint
		var platform, eventType string
		if err := rows.Scan(&platform, &tp.CampaignID, &tp.AdID, &eventType, &tp.Timestamp); err != nil {
			return nil, err
		}
		tp.Platform = models.Platform(platform)
		tp.EventType = models.EventType(eventType)
		tp.Position = len(touchpoints) + 1
		touchpoints = append(touchpoints, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return touchpoints, nil
}

// SessionID returns the most recent session recorded for the user.
func (r *PostgresJourneyStore) SessionID(ctx context.Context, userID string) (string, error) {
	var sessionID string
	err := r.pool.QueryRow(ctx, `
		SELECT session_id FROM touchpoints
		WHERE user_id = $1 ORDER BY ts DESC LIMIT 1
	`, userID).Scan(&sessionID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query session: %w", err)
	}
	return sessionID, nil
}
