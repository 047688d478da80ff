package evaluation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"relato/internal/evaluation/models"
	"relato/pkg/platform/sentinel"
)

// Postgres persists evaluations in two tables:
//
//	CREATE TABLE evaluations (
//	    id              UUID PRIMARY KEY,
//	    user_id         UUID NOT NULL,
//	    year            INT NOT NULL,
//	    period_index    INT NOT NULL,
//	    granularity     INT NOT NULL,
//	    general_comment TEXT NOT NULL DEFAULT '',
//	    created_at      TIMESTAMPTZ NOT NULL,
//	    updated_at      TIMESTAMPTZ NOT NULL,
//	    UNIQUE (user_id, year, period_index, granularity)
//	);
//
//	CREATE TABLE evaluation_ratings (
//	    evaluation_id UUID NOT NULL REFERENCES evaluations(id) ON DELETE CASCADE,
//	    category      TEXT NOT NULL,
//	    rating        INT NOT NULL,
//	    comment       TEXT NOT NULL DEFAULT '',
//	    PRIMARY KEY (evaluation_id, category)
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, eval models.Evaluation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO evaluations (id, user_id, year, period_index, granularity, general_comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		eval.ID, eval.UserID, eval.Period.Year, eval.Period.Index, int(eval.Period.Granularity),
		eval.GeneralComment, eval.CreatedAt, eval.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}

	if err := insertRatings(ctx, tx, eval.ID, eval.Ratings); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (models.Evaluation, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *Postgres) FindByUserAndPeriod(ctx context.Context, userID uuid.UUID, period models.Period) (models.Evaluation, error) {
	return s.findOne(ctx,
		`WHERE user_id = $1 AND year = $2 AND period_index = $3 AND granularity = $4`,
		userID, period.Year, period.Index, int(period.Granularity),
	)
}

func (s *Postgres) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, year, period_index, granularity, general_comment, created_at, updated_at
		FROM evaluations
		WHERE user_id = $1
		ORDER BY year DESC, period_index DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	return s.scanWithRatings(ctx, rows)
}

func (s *Postgres) ListByUsersAndPeriod(ctx context.Context, userIDs []uuid.UUID, period models.Period) ([]models.Evaluation, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, year, period_index, granularity, general_comment, created_at, updated_at
		FROM evaluations
		WHERE user_id = ANY($1) AND year = $2 AND period_index = $3 AND granularity = $4`,
		pq.Array(userIDs), period.Year, period.Index, int(period.Granularity),
	)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	return s.scanWithRatings(ctx, rows)
}

// Update rewrites the evaluation row and replaces its ratings wholesale
// in one transaction.
func (s *Postgres) Update(ctx context.Context, eval models.Evaluation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE evaluations
		SET general_comment = $2, updated_at = $3
		WHERE id = $1`,
		eval.ID, eval.GeneralComment, eval.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM evaluation_ratings WHERE evaluation_id = $1`, eval.ID); err != nil {
		return fmt.Errorf("delete ratings: %w", err)
	}
	if err := insertRatings(ctx, tx, eval.ID, eval.Ratings); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
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

func insertRatings(ctx context.Context, tx *sql.Tx, evaluationID uuid.UUID, ratings []models.CategoryRating) error {
	for _, rating := range ratings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO evaluation_ratings (evaluation_id, category, rating, comment)
			VALUES ($1, $2, $3, $4)`,
			evaluationID, string(rating.Category), rating.Rating, rating.Comment,
		)
		if err != nil {
			return fmt.Errorf("insert rating: %w", err)
		}
	}
	return nil
}

func (s *Postgres) findOne(ctx context.Context, where string, args ...any) (models.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, year, period_index, granularity, general_comment, created_at, updated_at
		FROM evaluations `+where, args...)

	eval, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Evaluation{}, sentinel.ErrNotFound
		}
		return models.Evaluation{}, err
	}

	ratings, err := s.ratingsFor(ctx, eval.ID)
	if err != nil {
		return models.Evaluation{}, err
	}
	eval.Ratings = ratings
	return eval, nil
}

func (s *Postgres) scanWithRatings(ctx context.Context, rows *sql.Rows) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, eval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}

	for i := range evals {
		ratings, err := s.ratingsFor(ctx, evals[i].ID)
		if err != nil {
			return nil, err
		}
		evals[i].Ratings = ratings
	}
	return evals, nil
}

func (s *Postgres) ratingsFor(ctx context.Context, evaluationID uuid.UUID) ([]models.CategoryRating, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, rating, comment
		FROM evaluation_ratings
		WHERE evaluation_id = $1
		ORDER BY category`,
		evaluationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.CategoryRating
	for rows.Next() {
		var rating models.CategoryRating
		if err := rows.Scan(&rating.Category, &rating.Rating, &rating.Comment); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scannable) (models.Evaluation, error) {
	var (
		eval        models.Evaluation
		granularity int
	)
	err := row.Scan(
		&eval.ID, &eval.UserID,
		&eval.Period.Year, &eval.Period.Index, &granularity,
		&eval.GeneralComment, &eval.CreatedAt, &eval.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Evaluation{}, err
		}
		return models.Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}
	eval.Period.Granularity = models.Granularity(granularity)
	return eval, nil
}
