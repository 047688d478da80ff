package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"relato/internal/user/models"
	"relato/pkg/email"
	"relato/pkg/platform/sentinel"
)

// Postgres persists users:
//
//	CREATE TABLE users (
//	    id         UUID PRIMARY KEY,
//	    name       TEXT NOT NULL,
//	    email      TEXT NOT NULL UNIQUE,
//	    latitude   DOUBLE PRECISION,
//	    longitude  DOUBLE PRECISION,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, u models.User) error {
	if u.Name == "" {
		first, last := email.DeriveNameFromEmail(u.Email)
		u.Name = first + " " + last
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.Latitude, u.Longitude, u.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, latitude, longitude, created_at
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Latitude, &u.Longitude, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, sentinel.ErrNotFound
		}
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *Postgres) FindIDsInBoundingBox(ctx context.Context, box models.BoundingBox) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id
		FROM users
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4`,
		box.MinLat, box.MaxLat, box.MinLng, box.MaxLng,
	)
	if err != nil {
		return nil, fmt.Errorf("query users in box: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}

func (s *Postgres) UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET latitude = $2, longitude = $3 WHERE id = $1`,
		id, lat, lng,
	)
	if err != nil {
		return fmt.Errorf("update coordinates: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
