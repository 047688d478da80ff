package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"relato/internal/engagement/models"
)

// Postgres persists activity events in the activity_events table.
//
// Schema:
//
//	CREATE TABLE activity_events (
//	    id            UUID PRIMARY KEY,
//	    user_id       UUID NOT NULL,
//	    activity_type TEXT NOT NULL,
//	    metadata      JSONB,
//	    occurred_at   TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX activity_events_user_time_idx ON activity_events (user_id, occurred_at);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Append(ctx context.Context, event models.ActivityEvent) error {
	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal activity metadata: %w", err)
		}
	}

	query := `
		INSERT INTO activity_events (id, user_id, activity_type, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.UserID, string(event.Type), metadata, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert activity event: %w", err)
	}
	return nil
}

func (s *Postgres) ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.ActivityEvent, error) {
	query := `
		SELECT id, user_id, activity_type, metadata, occurred_at
		FROM activity_events
		WHERE user_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByUserBetween returns events with from <= occurred_at < to.
func (s *Postgres) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ActivityEvent, error) {
	query := `
		SELECT id, user_id, activity_type, metadata, occurred_at
		FROM activity_events
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Postgres) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_events WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count activity events: %w", err)
	}
	return count, nil
}

func scanEvents(rows *sql.Rows) ([]models.ActivityEvent, error) {
	var out []models.ActivityEvent
	for rows.Next() {
		var (
			event    models.ActivityEvent
			typ      string
			metadata []byte
		)
		if err := rows.Scan(&event.ID, &event.UserID, &typ, &metadata, &event.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		event.Type = models.ActivityType(typ)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal activity metadata: %w", err)
			}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
