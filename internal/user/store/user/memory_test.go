package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"relato/internal/user/models"
	"relato/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func ptr(f float64) *float64 { return &f }

func (s *UserStoreSuite) newUser(email string, lat, lng *float64) models.User {
	return models.User{
		ID:        uuid.New(),
		Name:      "Test User",
		Email:     email,
		Latitude:  lat,
		Longitude: lng,
		CreatedAt: time.Now(),
	}
}

func (s *UserStoreSuite) TestCreateRejectsDuplicateEmail() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("a@example.com", nil, nil)))

	err := s.store.Create(s.ctx, s.newUser("A@Example.com", nil, nil))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *UserStoreSuite) TestCreateDerivesNameFromEmail() {
	u := s.newUser("maria.souza@example.com", nil, nil)
	u.Name = ""
	s.Require().NoError(s.store.Create(s.ctx, u))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Maria Souza", found.Name)
}

func (s *UserStoreSuite) TestFindIDsInBoundingBox() {
	inside := s.newUser("inside@example.com", ptr(-23.55), ptr(-46.63))
	boundary := s.newUser("boundary@example.com", ptr(-23.56), ptr(-46.64))
	outside := s.newUser("outside@example.com", ptr(-22.90), ptr(-43.20))
	noCoords := s.newUser("nowhere@example.com", nil, nil)

	for _, u := range []models.User{inside, boundary, outside, noCoords} {
		s.Require().NoError(s.store.Create(s.ctx, u))
	}

	box := models.BoxAround(-23.55, -46.63, 0.01)
	ids, err := s.store.FindIDsInBoundingBox(s.ctx, box)
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{inside.ID, boundary.ID}, ids)
}

func (s *UserStoreSuite) TestUpdateCoordinates() {
	u := s.newUser("a@example.com", nil, nil)
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.Require().NoError(s.store.UpdateCoordinates(s.ctx, u.ID, -23.55, -46.63))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.Latitude)
	s.InDelta(-23.55, *found.Latitude, 1e-9)

	s.ErrorIs(s.store.UpdateCoordinates(s.ctx, uuid.New(), 0, 0), sentinel.ErrNotFound)
}
