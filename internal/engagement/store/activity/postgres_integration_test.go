//go:build integration

package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"relato/internal/engagement/models"
	"relato/pkg/testutil/containers"
)

type PostgresActivitySuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func TestPostgresActivitySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := &PostgresActivitySuite{pg: containers.NewPostgresContainer(t)}
	suite.Run(t, s)
}

func (s *PostgresActivitySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewPostgres(s.pg.DB)
	s.Require().NoError(s.pg.Truncate(s.ctx, "activity_events"))
}

func (s *PostgresActivitySuite) event(userID uuid.UUID, at time.Time) models.ActivityEvent {
	return models.ActivityEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       models.ActivityReportCreated,
		Metadata:   map[string]any{"report_id": uuid.NewString()},
		OccurredAt: at,
	}
}

func (s *PostgresActivitySuite) TestAppendAndListSince() {
	userID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	old := s.event(userID, now.Add(-48*time.Hour))
	recent := s.event(userID, now.Add(-time.Hour))
	other := s.event(uuid.New(), now)

	for _, e := range []models.ActivityEvent{old, recent, other} {
		s.Require().NoError(s.store.Append(s.ctx, e))
	}

	events, err := s.store.ListByUserSince(s.ctx, userID, now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(recent.ID, events[0].ID)
	s.Equal(models.ActivityReportCreated, events[0].Type)
	s.Equal(recent.Metadata["report_id"], events[0].Metadata["report_id"])
}

func (s *PostgresActivitySuite) TestListBetweenIsHalfOpen() {
	userID := uuid.New()
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	inside := s.event(userID, from)
	atEnd := s.event(userID, to)
	s.Require().NoError(s.store.Append(s.ctx, inside))
	s.Require().NoError(s.store.Append(s.ctx, atEnd))

	events, err := s.store.ListByUserBetween(s.ctx, userID, from, to)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(inside.ID, events[0].ID)
}

func (s *PostgresActivitySuite) TestCountByUser() {
	userID := uuid.New()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Append(s.ctx, s.event(userID, now.Add(-time.Duration(i)*time.Hour))))
	}
	s.Require().NoError(s.store.Append(s.ctx, s.event(uuid.New(), now)))

	count, err := s.store.CountByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(3, count)
}
