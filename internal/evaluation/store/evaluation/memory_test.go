package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"relato/internal/evaluation/models"
	"relato/pkg/platform/sentinel"
)

type EvaluationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *EvaluationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestEvaluationStoreSuite(t *testing.T) {
	suite.Run(t, new(EvaluationStoreSuite))
}

func (s *EvaluationStoreSuite) newEvaluation(userID uuid.UUID, period models.Period) models.Evaluation {
	now := time.Now()
	return models.Evaluation{
		ID:     uuid.New(),
		UserID: userID,
		Period: period,
		Ratings: []models.CategoryRating{
			{Category: models.CategorySafety, Rating: 4},
			{Category: models.CategoryNoise, Rating: 2, Comment: "construction nearby"},
		},
		GeneralComment: "fine overall",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *EvaluationStoreSuite) TestCreateAndFind() {
	userID := uuid.New()
	period := models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}
	eval := s.newEvaluation(userID, period)

	s.Require().NoError(s.store.Create(s.ctx, eval))

	s.Run("by id", func() {
		found, err := s.store.FindByID(s.ctx, eval.ID)
		s.Require().NoError(err)
		s.Equal(eval.ID, found.ID)
		s.Len(found.Ratings, 2)
	})

	s.Run("by user and period", func() {
		found, err := s.store.FindByUserAndPeriod(s.ctx, userID, period)
		s.Require().NoError(err)
		s.Equal(eval.ID, found.ID)
	})

	s.Run("unknown id", func() {
		_, err := s.store.FindByID(s.ctx, uuid.New())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *EvaluationStoreSuite) TestCreateConflictOnSamePeriod() {
	userID := uuid.New()
	period := models.Period{Year: 2024, Index: 2, Granularity: models.Semiannual}

	s.Require().NoError(s.store.Create(s.ctx, s.newEvaluation(userID, period)))

	err := s.store.Create(s.ctx, s.newEvaluation(userID, period))
	s.ErrorIs(err, sentinel.ErrConflict)

	s.Run("different granularity is a different period", func() {
		quarterly := models.Period{Year: 2024, Index: 2, Granularity: models.Quarterly}
		s.NoError(s.store.Create(s.ctx, s.newEvaluation(userID, quarterly)))
	})

	s.Run("other user is unaffected", func() {
		s.NoError(s.store.Create(s.ctx, s.newEvaluation(uuid.New(), period)))
	})
}

func (s *EvaluationStoreSuite) TestListByUserOrdersNewestFirst() {
	userID := uuid.New()
	periods := []models.Period{
		{Year: 2023, Index: 2, Granularity: models.Semiannual},
		{Year: 2024, Index: 1, Granularity: models.Semiannual},
		{Year: 2023, Index: 1, Granularity: models.Semiannual},
	}
	for _, p := range periods {
		s.Require().NoError(s.store.Create(s.ctx, s.newEvaluation(userID, p)))
	}

	evals, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(evals, 3)
	s.Equal(models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}, evals[0].Period)
	s.Equal(models.Period{Year: 2023, Index: 2, Granularity: models.Semiannual}, evals[1].Period)
	s.Equal(models.Period{Year: 2023, Index: 1, Granularity: models.Semiannual}, evals[2].Period)
}

func (s *EvaluationStoreSuite) TestListByUsersAndPeriod() {
	period := models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}
	other := models.Period{Year: 2024, Index: 2, Granularity: models.Semiannual}

	userA, userB, userC := uuid.New(), uuid.New(), uuid.New()
	s.Require().NoError(s.store.Create(s.ctx, s.newEvaluation(userA, period)))
	s.Require().NoError(s.store.Create(s.ctx, s.newEvaluation(userB, other)))
	s.Require().NoError(s.store.Create(s.ctx, s.newEvaluation(userC, period)))

	evals, err := s.store.ListByUsersAndPeriod(s.ctx, []uuid.UUID{userA, userB}, period)
	s.Require().NoError(err)
	s.Require().Len(evals, 1)
	s.Equal(userA, evals[0].UserID)
}

func (s *EvaluationStoreSuite) TestUpdateReplacesRatings() {
	userID := uuid.New()
	period := models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}
	eval := s.newEvaluation(userID, period)
	s.Require().NoError(s.store.Create(s.ctx, eval))

	eval.Ratings = []models.CategoryRating{{Category: models.CategorySignage, Rating: 5}}
	eval.GeneralComment = "much better now"
	s.Require().NoError(s.store.Update(s.ctx, eval))

	found, err := s.store.FindByID(s.ctx, eval.ID)
	s.Require().NoError(err)
	s.Require().Len(found.Ratings, 1)
	s.Equal(models.CategorySignage, found.Ratings[0].Category)
	s.Equal("much better now", found.GeneralComment)
}

func (s *EvaluationStoreSuite) TestUpdateMissing() {
	err := s.store.Update(s.ctx, s.newEvaluation(uuid.New(), models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *EvaluationStoreSuite) TestDeleteFreesThePeriod() {
	userID := uuid.New()
	period := models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}
	eval := s.newEvaluation(userID, period)
	s.Require().NoError(s.store.Create(s.ctx, eval))

	s.Require().NoError(s.store.Delete(s.ctx, eval.ID))

	_, err := s.store.FindByID(s.ctx, eval.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.Create(s.ctx, s.newEvaluation(userID, period)),
		"period slot is reusable after delete")
}

func (s *EvaluationStoreSuite) TestStoredEvaluationIsIsolated() {
	userID := uuid.New()
	period := models.Period{Year: 2024, Index: 1, Granularity: models.Semiannual}
	eval := s.newEvaluation(userID, period)
	s.Require().NoError(s.store.Create(s.ctx, eval))

	eval.Ratings[0].Rating = 1

	found, err := s.store.FindByID(s.ctx, eval.ID)
	s.Require().NoError(err)
	s.Equal(4, found.Ratings[0].Rating, "mutating the caller's slice must not leak into the store")
}
