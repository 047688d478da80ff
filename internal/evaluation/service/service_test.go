package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"relato/internal/evaluation/models"
	"relato/internal/evaluation/service/mocks"
	userModels "relato/internal/user/models"
	dErrors "relato/pkg/domain-errors"
	"relato/pkg/platform/sentinel"
	"relato/pkg/requestcontext"
)

func newResolver(t *testing.T, opts ...Option) (*Resolver, *mocks.MockEvaluationStore, *mocks.MockUserLocator) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	store := mocks.NewMockEvaluationStore(ctrl)
	users := mocks.NewMockUserLocator(ctrl)
	return New(store, users, opts...), store, users
}

func fixedCtx(month time.Month) context.Context {
	now := time.Date(2024, month, 15, 10, 0, 0, 0, time.UTC)
	return requestcontext.WithTime(context.Background(), now)
}

func validRatings() []models.CategoryRating {
	return []models.CategoryRating{
		{Category: models.CategorySafety, Rating: 4},
		{Category: models.CategoryNoise, Rating: 2},
	}
}

func TestCurrentPeriod(t *testing.T) {
	t.Run("semiannual by default", func(t *testing.T) {
		resolver, _, _ := newResolver(t)
		period := resolver.CurrentPeriod(fixedCtx(time.September))
		assert.Equal(t, models.Period{Year: 2024, Index: 2, Granularity: models.Semiannual}, period)
	})

	t.Run("quarterly when configured", func(t *testing.T) {
		resolver, _, _ := newResolver(t, WithGranularity(models.Quarterly))
		period := resolver.CurrentPeriod(fixedCtx(time.September))
		assert.Equal(t, models.Period{Year: 2024, Index: 3, Granularity: models.Quarterly}, period)
	})

	t.Run("invalid granularity keeps the default", func(t *testing.T) {
		resolver, _, _ := newResolver(t, WithGranularity(models.Granularity(3)))
		period := resolver.CurrentPeriod(fixedCtx(time.March))
		assert.Equal(t, models.Semiannual, period.Granularity)
	})
}

func TestCreateEvaluation(t *testing.T) {
	userID := uuid.New()
	ctx := fixedCtx(time.March)
	currentPeriod := models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}

	t.Run("creates in the current period by default", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByUserAndPeriod(gomock.Any(), userID, currentPeriod).
			Return(models.Evaluation{}, sentinel.ErrNotFound)
		store.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, eval models.Evaluation) error {
				assert.Equal(t, currentPeriod, eval.Period)
				assert.Len(t, eval.Ratings, 2)
				return nil
			})

		eval, err := resolver.CreateEvaluation(ctx, userID, CreateEvaluationInput{Ratings: validRatings()})
		require.NoError(t, err)
		assert.Equal(t, currentPeriod, eval.Period)
		assert.NotEqual(t, uuid.Nil, eval.ID)
	})

	t.Run("pre-check conflict yields the domain message", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByUserAndPeriod(gomock.Any(), userID, currentPeriod).
			Return(models.Evaluation{ID: uuid.New()}, nil)

		_, err := resolver.CreateEvaluation(ctx, userID, CreateEvaluationInput{Ratings: validRatings()})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Contains(t, err.Error(), "evaluation for this period already exists")
	})

	t.Run("store conflict backstops the race", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByUserAndPeriod(gomock.Any(), userID, currentPeriod).
			Return(models.Evaluation{}, sentinel.ErrNotFound)
		store.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(sentinel.ErrConflict)

		_, err := resolver.CreateEvaluation(ctx, userID, CreateEvaluationInput{Ratings: validRatings()})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("duplicate categories keep the last rating", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByUserAndPeriod(gomock.Any(), userID, gomock.Any()).
			Return(models.Evaluation{}, sentinel.ErrNotFound)
		store.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, eval models.Evaluation) error {
				require.Len(t, eval.Ratings, 1)
				assert.Equal(t, 5, eval.Ratings[0].Rating)
				return nil
			})

		_, err := resolver.CreateEvaluation(ctx, userID, CreateEvaluationInput{
			Ratings: []models.CategoryRating{
				{Category: models.CategorySafety, Rating: 1},
				{Category: models.CategorySafety, Rating: 5},
			},
		})
		require.NoError(t, err)
	})

	t.Run("validation failures never reach the store", func(t *testing.T) {
		cases := []struct {
			name  string
			input CreateEvaluationInput
		}{
			{"no ratings", CreateEvaluationInput{}},
			{"unknown category", CreateEvaluationInput{
				Ratings: []models.CategoryRating{{Category: "weather", Rating: 3}},
			}},
			{"rating above scale", CreateEvaluationInput{
				Ratings: []models.CategoryRating{{Category: models.CategorySafety, Rating: 6}},
			}},
			{"rating below scale", CreateEvaluationInput{
				Ratings: []models.CategoryRating{{Category: models.CategorySafety, Rating: 0}},
			}},
			{"year before policy floor", CreateEvaluationInput{
				Year: 2019, Index: 1,
				Ratings: validRatings(),
			}},
			{"index beyond granularity", CreateEvaluationInput{
				Year: 2024, Index: 3,
				Ratings: validRatings(),
			}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				resolver, _, _ := newResolver(t)
				_, err := resolver.CreateEvaluation(ctx, userID, tc.input)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			})
		}
	})
}

func TestGetEvaluation(t *testing.T) {
	userID := uuid.New()
	evalID := uuid.New()
	ctx := context.Background()

	t.Run("owner reads it", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByID(gomock.Any(), evalID).
			Return(models.Evaluation{ID: evalID, UserID: userID}, nil)

		eval, err := resolver.GetEvaluation(ctx, evalID, userID)
		require.NoError(t, err)
		assert.Equal(t, evalID, eval.ID)
	})

	t.Run("another user's evaluation reads as not found", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByID(gomock.Any(), evalID).
			Return(models.Evaluation{ID: evalID, UserID: uuid.New()}, nil)

		_, err := resolver.GetEvaluation(ctx, evalID, userID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("missing evaluation", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByID(gomock.Any(), evalID).
			Return(models.Evaluation{}, sentinel.ErrNotFound)

		_, err := resolver.GetEvaluation(ctx, evalID, userID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestUpdateEvaluation(t *testing.T) {
	userID := uuid.New()
	evalID := uuid.New()
	ctx := fixedCtx(time.March)
	stored := models.Evaluation{
		ID:     evalID,
		UserID: userID,
		Period: models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual},
		Ratings: []models.CategoryRating{
			{Category: models.CategorySafety, Rating: 2},
			{Category: models.CategoryNoise, Rating: 3},
		},
		GeneralComment: "original",
	}

	t.Run("ratings replaced wholesale when present", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().FindByID(gomock.Any(), evalID).Return(stored, nil)
		store.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, eval models.Evaluation) error {
				require.Len(t, eval.Ratings, 1)
				assert.Equal(t, models.CategorySignage, eval.Ratings[0].Category)
				assert.Equal(t, "original", eval.GeneralComment)
				return nil
			})

		newRatings := []models.CategoryRating{{Category: models.CategorySignage, Rating: 5}}
		eval, err := resolver.UpdateEvaluation(ctx, evalID, userID, UpdateEvaluationInput{Ratings: &newRatings})
		require.NoError(t, err)
		assert.Len(t, eval.Ratings, 1)
	})

	t.Run("nil ratings keep the stored set", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().FindByID(gomock.Any(), evalID).Return(stored, nil)
		store.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, eval models.Evaluation) error {
				assert.Len(t, eval.Ratings, 2)
				assert.Equal(t, "revised", eval.GeneralComment)
				return nil
			})

		comment := "revised"
		_, err := resolver.UpdateEvaluation(ctx, evalID, userID, UpdateEvaluationInput{GeneralComment: &comment})
		require.NoError(t, err)
	})

	t.Run("ownership enforced before writing", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().FindByID(gomock.Any(), evalID).Return(stored, nil)

		_, err := resolver.UpdateEvaluation(ctx, evalID, uuid.New(), UpdateEvaluationInput{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestNeedsEvaluation(t *testing.T) {
	userID := uuid.New()
	ctx := fixedCtx(time.March)
	currentPeriod := models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}

	t.Run("true when the period has no evaluation", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByUserAndPeriod(gomock.Any(), userID, currentPeriod).
			Return(models.Evaluation{}, sentinel.ErrNotFound)

		needs, err := resolver.NeedsEvaluation(ctx, userID)
		require.NoError(t, err)
		assert.True(t, needs)
	})

	t.Run("false once evaluated", func(t *testing.T) {
		resolver, store, _ := newResolver(t)
		store.EXPECT().
			FindByUserAndPeriod(gomock.Any(), userID, currentPeriod).
			Return(models.Evaluation{ID: uuid.New()}, nil)

		needs, err := resolver.NeedsEvaluation(ctx, userID)
		require.NoError(t, err)
		assert.False(t, needs)
	})
}

func TestAreaStatistics(t *testing.T) {
	ctx := fixedCtx(time.March)
	currentPeriod := models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}

	t.Run("no users yields the explicit empty shape", func(t *testing.T) {
		resolver, _, users := newResolver(t)
		users.EXPECT().
			FindIDsInBoundingBox(gomock.Any(), userModels.BoxAround(-23.55, -46.63, DefaultAreaRadius)).
			Return(nil, nil)

		stats, err := resolver.AreaStatistics(ctx, -23.55, -46.63, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.UsersFound)
		assert.Equal(t, 0, stats.TotalEvaluations)
		assert.Zero(t, stats.ParticipationRate)
		assert.Empty(t, stats.CategoryAverages)
		assert.NotNil(t, stats.CategoryAverages)
		assert.Equal(t, currentPeriod, stats.Period)
	})

	t.Run("users without evaluations participate at zero", func(t *testing.T) {
		resolver, store, users := newResolver(t)
		ids := []uuid.UUID{uuid.New(), uuid.New()}
		users.EXPECT().FindIDsInBoundingBox(gomock.Any(), gomock.Any()).Return(ids, nil)
		store.EXPECT().ListByUsersAndPeriod(gomock.Any(), ids, currentPeriod).Return(nil, nil)

		stats, err := resolver.AreaStatistics(ctx, -23.55, -46.63, 0.05)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.UsersFound)
		assert.Equal(t, 0, stats.TotalEvaluations)
		assert.Zero(t, stats.ParticipationRate)
		assert.Empty(t, stats.CategoryAverages)
	})

	t.Run("averages ratings per category", func(t *testing.T) {
		resolver, store, users := newResolver(t)
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
		users.EXPECT().FindIDsInBoundingBox(gomock.Any(), gomock.Any()).Return(ids, nil)
		store.EXPECT().
			ListByUsersAndPeriod(gomock.Any(), ids, currentPeriod).
			Return([]models.Evaluation{
				{Ratings: []models.CategoryRating{
					{Category: models.CategorySafety, Rating: 4},
					{Category: models.CategoryNoise, Rating: 2},
				}},
				{Ratings: []models.CategoryRating{
					{Category: models.CategorySafety, Rating: 2},
				}},
			}, nil)

		stats, err := resolver.AreaStatistics(ctx, -23.55, -46.63, 0.05)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.UsersFound)
		assert.Equal(t, 2, stats.TotalEvaluations)
		assert.InDelta(t, 50.0, stats.ParticipationRate, 1e-9)
		assert.InDelta(t, 3.0, stats.CategoryAverages[models.CategorySafety], 1e-9)
		assert.InDelta(t, 2.0, stats.CategoryAverages[models.CategoryNoise], 1e-9)
	})

	t.Run("coordinate validation", func(t *testing.T) {
		resolver, _, _ := newResolver(t)
		_, err := resolver.AreaStatistics(ctx, 91, 0, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = resolver.AreaStatistics(ctx, 0, 0, -1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
