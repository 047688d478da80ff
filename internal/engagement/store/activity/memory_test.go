package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"relato/internal/engagement/models"
)

type ActivityStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ActivityStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestActivityStoreSuite(t *testing.T) {
	suite.Run(t, new(ActivityStoreSuite))
}

func (s *ActivityStoreSuite) newEvent(userID uuid.UUID, at time.Time) models.ActivityEvent {
	return models.ActivityEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       models.ActivityReportCreated,
		OccurredAt: at,
	}
}

func (s *ActivityStoreSuite) TestAppendAndList() {
	userID := uuid.New()
	now := time.Now()

	s.Require().NoError(s.store.Append(s.ctx, s.newEvent(userID, now.AddDate(0, 0, -2))))
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent(userID, now)))

	s.Run("since filter includes the boundary", func() {
		events, err := s.store.ListByUserSince(s.ctx, userID, now)
		s.Require().NoError(err)
		s.Len(events, 1)
	})

	s.Run("all events within window", func() {
		events, err := s.store.ListByUserSince(s.ctx, userID, now.AddDate(0, 0, -7))
		s.Require().NoError(err)
		s.Len(events, 2)
	})

	s.Run("unknown user has no events", func() {
		events, err := s.store.ListByUserSince(s.ctx, uuid.New(), now.AddDate(0, 0, -7))
		s.Require().NoError(err)
		s.Empty(events)
	})
}

func (s *ActivityStoreSuite) TestListBetween() {
	userID := uuid.New()
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	s.Require().NoError(s.store.Append(s.ctx, s.newEvent(userID, from)))                    // included
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent(userID, to.Add(-time.Second))))    // included
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent(userID, to)))                      // excluded: half-open
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent(userID, from.Add(-time.Second)))) // excluded

	events, err := s.store.ListByUserBetween(s.ctx, userID, from, to)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *ActivityStoreSuite) TestConcurrentAppends() {
	userA := uuid.New()
	userB := uuid.New()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.store.Append(s.ctx, s.newEvent(userA, time.Now()))
		}()
		go func() {
			defer wg.Done()
			_ = s.store.Append(s.ctx, s.newEvent(userB, time.Now()))
		}()
	}
	wg.Wait()

	countA, err := s.store.CountByUser(s.ctx, userA)
	s.Require().NoError(err)
	s.Equal(50, countA)

	countB, err := s.store.CountByUser(s.ctx, userB)
	s.Require().NoError(err)
	s.Equal(50, countB)
}
