package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"relato/internal/report/models"
	"relato/pkg/platform/sentinel"
)

// Postgres persists reports:
//
//	CREATE TABLE reports (
//	    id          UUID PRIMARY KEY,
//	    user_id     UUID NOT NULL,
//	    title       TEXT NOT NULL DEFAULT '',
//	    category    TEXT NOT NULL,
//	    description TEXT NOT NULL,
//	    latitude    DOUBLE PRECISION NOT NULL,
//	    longitude   DOUBLE PRECISION NOT NULL,
//	    address     TEXT NOT NULL DEFAULT '',
//	    priority    TEXT NOT NULL,
//	    status      TEXT NOT NULL,
//	    comment     TEXT NOT NULL DEFAULT '',
//	    staff_id    UUID,
//	    images      TEXT[] NOT NULL DEFAULT '{}',
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const reportColumns = `id, user_id, title, category, description, latitude, longitude, address, priority, status, comment, staff_id, images, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, r models.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		r.ID, r.UserID, r.Title, string(r.Category), r.Description,
		r.Latitude, r.Longitude, r.Address, string(r.Priority), string(r.Status),
		r.Comment, r.StaffID, pq.Array(r.Images), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	r, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Report{}, sentinel.ErrNotFound
		}
		return models.Report{}, err
	}
	return r, nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID uuid.UUID, filter models.Filter) ([]models.Report, int, error) {
	where, args := filterClauses(filter, "user_id = $1", userID)
	return s.list(ctx, where, args, filter)
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]models.Report, int, error) {
	where, args := filterClauses(filter)
	return s.list(ctx, where, args, filter)
}

func (s *Postgres) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, comment string, staffID uuid.UUID, at time.Time) (models.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE reports
		SET status = $2, comment = $3, staff_id = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+reportColumns,
		id, string(status), comment, staffID, at,
	)
	r, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Report{}, sentinel.ErrNotFound
		}
		return models.Report{}, err
	}
	return r, nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
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

func (s *Postgres) CountByReporter(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}

func (s *Postgres) MapPoints(ctx context.Context) ([]models.MapPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, latitude, longitude, category, status, priority, created_at
		FROM reports
		WHERE status <> $1`,
		string(models.StatusRejected),
	)
	if err != nil {
		return nil, fmt.Errorf("query map points: %w", err)
	}
	defer rows.Close()

	var points []models.MapPoint
	for rows.Next() {
		var p models.MapPoint
		if err := rows.Scan(&p.ID, &p.Latitude, &p.Longitude, &p.Category, &p.Status, &p.Priority, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan map point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate map points: %w", err)
	}
	return points, nil
}

func (s *Postgres) list(ctx context.Context, where string, args []any, filter models.Filter) ([]models.Report, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM reports`
	if where != "" {
		countQuery += ` WHERE ` + where
	}
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, total, nil
}

func filterClauses(filter models.Filter, base ...any) (string, []any) {
	var clauses []string
	var args []any
	if len(base) > 0 {
		clauses = append(clauses, base[0].(string))
		args = append(args, base[1:]...)
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		clauses = append(clauses, fmt.Sprintf("priority = $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

type scannable interface {
	Scan(dest ...any) error
}

func scanReport(row scannable) (models.Report, error) {
	var (
		r      models.Report
		images pq.StringArray
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.Title, &r.Category, &r.Description,
		&r.Latitude, &r.Longitude, &r.Address, &r.Priority, &r.Status,
		&r.Comment, &r.StaffID, &images, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Report{}, err
		}
		return models.Report{}, fmt.Errorf("scan report: %w", err)
	}
	r.Images = images
	return r, nil
}
