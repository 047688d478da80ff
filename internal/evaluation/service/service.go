// Package service resolves evaluation periods and manages period
// evaluations and their area aggregates.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	dErrors "relato/pkg/domain-errors"

	"relato/internal/evaluation/metrics"
	"relato/internal/evaluation/models"
	userModels "relato/internal/user/models"
	"relato/pkg/platform/sentinel"
	"relato/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks EvaluationStore,UserLocator

// EvaluationStore persists evaluations keyed by user and period.
type EvaluationStore interface {
	Create(ctx context.Context, eval models.Evaluation) error
	FindByID(ctx context.Context, id uuid.UUID) (models.Evaluation, error)
	FindByUserAndPeriod(ctx context.Context, userID uuid.UUID, period models.Period) (models.Evaluation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Evaluation, error)
	ListByUsersAndPeriod(ctx context.Context, userIDs []uuid.UUID, period models.Period) ([]models.Evaluation, error)
	Update(ctx context.Context, eval models.Evaluation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserLocator answers which users live inside a coordinate box.
type UserLocator interface {
	FindIDsInBoundingBox(ctx context.Context, box userModels.BoundingBox) ([]uuid.UUID, error)
}

// DefaultAreaRadius is the half-width, in degrees, of the statistics
// box when the caller does not supply one.
const DefaultAreaRadius = 0.01

type Resolver struct {
	store   EvaluationStore
	users   UserLocator
	policy  models.Granularity
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Resolver)

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithGranularity sets the deployment's evaluation policy. Invalid
// values are ignored and the semiannual default stands.
func WithGranularity(g models.Granularity) Option {
	return func(r *Resolver) {
		if g.Valid() {
			r.policy = g
		}
	}
}

func New(store EvaluationStore, users UserLocator, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		users:  users,
		policy: models.Semiannual,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CurrentPeriod places the request time in the deployment's evaluation
// window.
func (r *Resolver) CurrentPeriod(ctx context.Context) models.Period {
	return models.PeriodOf(requestcontext.Now(ctx), r.policy)
}

// CreateEvaluationInput carries a new evaluation. Year and Index name
// the window under the deployment's granularity; a zero Year targets
// the current period.
type CreateEvaluationInput struct {
	Year           int
	Index          int
	Ratings        []models.CategoryRating
	GeneralComment string
}

// CreateEvaluation validates and stores a new evaluation. At most one
// evaluation exists per user and period: a pre-check yields the domain
// message, and the store's uniqueness backstops the race.
func (r *Resolver) CreateEvaluation(ctx context.Context, userID uuid.UUID, input CreateEvaluationInput) (models.Evaluation, error) {
	period := r.CurrentPeriod(ctx)
	if input.Year != 0 {
		period = models.Period{Year: input.Year, Index: input.Index, Granularity: r.policy}
	}
	if err := validatePeriod(period); err != nil {
		return models.Evaluation{}, err
	}

	ratings, err := normalizeRatings(input.Ratings)
	if err != nil {
		return models.Evaluation{}, err
	}

	if _, err := r.store.FindByUserAndPeriod(ctx, userID, period); err == nil {
		if r.metrics != nil {
			r.metrics.EvaluationConflicts.Inc()
		}
		return models.Evaluation{}, dErrors.New(dErrors.CodeConflict, "evaluation for this period already exists")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return models.Evaluation{}, dErrors.Wrap(err, dErrors.CodeInternal, "check existing evaluation")
	}

	now := requestcontext.Now(ctx)
	eval := models.Evaluation{
		ID:             uuid.New(),
		UserID:         userID,
		Period:         period,
		Ratings:        ratings,
		GeneralComment: input.GeneralComment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.store.Create(ctx, eval); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if r.metrics != nil {
				r.metrics.EvaluationConflicts.Inc()
			}
			return models.Evaluation{}, dErrors.New(dErrors.CodeConflict, "evaluation for this period already exists")
		}
		return models.Evaluation{}, dErrors.Wrap(err, dErrors.CodeInternal, "store evaluation")
	}

	if r.metrics != nil {
		r.metrics.EvaluationsCreated.Inc()
	}
	return eval, nil
}

// GetEvaluation fetches an evaluation owned by the user. Another user's
// evaluation reads as not found rather than forbidden.
func (r *Resolver) GetEvaluation(ctx context.Context, id, userID uuid.UUID) (models.Evaluation, error) {
	eval, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Evaluation{}, dErrors.New(dErrors.CodeNotFound, "evaluation not found")
		}
		return models.Evaluation{}, dErrors.Wrap(err, dErrors.CodeInternal, "find evaluation")
	}
	if eval.UserID != userID {
		return models.Evaluation{}, dErrors.New(dErrors.CodeNotFound, "evaluation not found")
	}
	return eval, nil
}

func (r *Resolver) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Evaluation, error) {
	evals, err := r.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list evaluations")
	}
	return evals, nil
}

// UpdateEvaluationInput carries a partial update. Nil fields keep their
// stored values; a non-nil Ratings replaces the stored set wholesale.
type UpdateEvaluationInput struct {
	Ratings        *[]models.CategoryRating
	GeneralComment *string
}

// UpdateEvaluation applies a partial update. The period itself is
// immutable once created.
func (r *Resolver) UpdateEvaluation(ctx context.Context, id, userID uuid.UUID, input UpdateEvaluationInput) (models.Evaluation, error) {
	eval, err := r.GetEvaluation(ctx, id, userID)
	if err != nil {
		return models.Evaluation{}, err
	}

	if input.Ratings != nil {
		ratings, err := normalizeRatings(*input.Ratings)
		if err != nil {
			return models.Evaluation{}, err
		}
		eval.Ratings = ratings
	}
	if input.GeneralComment != nil {
		eval.GeneralComment = *input.GeneralComment
	}
	eval.UpdatedAt = requestcontext.Now(ctx)

	if err := r.store.Update(ctx, eval); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Evaluation{}, dErrors.New(dErrors.CodeNotFound, "evaluation not found")
		}
		return models.Evaluation{}, dErrors.Wrap(err, dErrors.CodeInternal, "update evaluation")
	}
	return eval, nil
}

func (r *Resolver) DeleteEvaluation(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := r.GetEvaluation(ctx, id, userID); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "evaluation not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete evaluation")
	}
	return nil
}

// NeedsEvaluation reports whether the user has yet to evaluate the
// current period.
func (r *Resolver) NeedsEvaluation(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := r.store.FindByUserAndPeriod(ctx, userID, r.CurrentPeriod(ctx))
	if err == nil {
		return false, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return true, nil
	}
	return false, dErrors.Wrap(err, dErrors.CodeInternal, "check current evaluation")
}

// AreaStatistics aggregates the current period's evaluations from users
// inside an axis-aligned box around the given point. The box is a
// deliberate simplification of ground distance. A zero radius uses the
// default.
func (r *Resolver) AreaStatistics(ctx context.Context, lat, lng, radius float64) (models.AreaStatistics, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.AreaStatistics{}, dErrors.New(dErrors.CodeValidation, "coordinates out of range")
	}
	if radius < 0 {
		return models.AreaStatistics{}, dErrors.New(dErrors.CodeValidation, "radius must not be negative")
	}
	if radius == 0 {
		radius = DefaultAreaRadius
	}

	if r.metrics != nil {
		r.metrics.AreaQueries.Inc()
	}

	period := r.CurrentPeriod(ctx)
	stats := models.AreaStatistics{
		CategoryAverages: make(map[models.Category]float64),
		Period:           period,
	}

	ids, err := r.users.FindIDsInBoundingBox(ctx, userModels.BoxAround(lat, lng, radius))
	if err != nil {
		return models.AreaStatistics{}, dErrors.Wrap(err, dErrors.CodeInternal, "find users in area")
	}
	stats.UsersFound = len(ids)
	if len(ids) == 0 {
		return stats, nil
	}

	evals, err := r.store.ListByUsersAndPeriod(ctx, ids, period)
	if err != nil {
		return models.AreaStatistics{}, dErrors.Wrap(err, dErrors.CodeInternal, "list area evaluations")
	}
	stats.TotalEvaluations = len(evals)
	stats.ParticipationRate = float64(len(evals)) / float64(len(ids)) * 100

	sums := make(map[models.Category]int)
	counts := make(map[models.Category]int)
	for _, eval := range evals {
		for _, rating := range eval.Ratings {
			sums[rating.Category] += rating.Rating
			counts[rating.Category]++
		}
	}
	for category, sum := range sums {
		stats.CategoryAverages[category] = float64(sum) / float64(counts[category])
	}
	return stats, nil
}

func validatePeriod(period models.Period) error {
	if period.Year < 2020 {
		return dErrors.Newf(dErrors.CodeValidation, "year out of range: %d", period.Year)
	}
	if period.Index < 1 || period.Index > int(period.Granularity) {
		return dErrors.Newf(dErrors.CodeValidation, "period index out of range: %d", period.Index)
	}
	return nil
}

// normalizeRatings validates categories and bounds, de-duplicating per
// category with last-write-wins.
func normalizeRatings(ratings []models.CategoryRating) ([]models.CategoryRating, error) {
	if len(ratings) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one rating is required")
	}

	byCategory := make(map[models.Category]models.CategoryRating, len(ratings))
	var order []models.Category
	for _, rating := range ratings {
		if !models.ValidCategory(rating.Category) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "unknown category: %s", rating.Category)
		}
		if rating.Rating < 1 || rating.Rating > 5 {
			return nil, dErrors.Newf(dErrors.CodeValidation, "rating for %s out of range: %d", rating.Category, rating.Rating)
		}
		if _, seen := byCategory[rating.Category]; !seen {
			order = append(order, rating.Category)
		}
		byCategory[rating.Category] = rating
	}

	out := make([]models.CategoryRating, 0, len(order))
	for _, category := range order {
		out = append(out, byCategory[category])
	}
	return out, nil
}
