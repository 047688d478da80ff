// Package user persists user profiles and answers coordinate queries.
package user

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"relato/internal/user/models"
	"relato/pkg/email"
	"relato/pkg/platform/sentinel"
)

type InMemory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := strings.ToLower(u.Email)
	if _, exists := s.byEmail[addr]; exists {
		return sentinel.ErrConflict
	}
	if u.Name == "" {
		first, last := email.DeriveNameFromEmail(u.Email)
		u.Name = first + " " + last
	}
	s.byID[u.ID] = u
	s.byEmail[addr] = u.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return models.User{}, sentinel.ErrNotFound
	}
	return u, nil
}

// FindIDsInBoundingBox returns the IDs of users whose home coordinates
// fall inside the box. Users without coordinates never match.
func (s *InMemory) FindIDsInBoundingBox(_ context.Context, box models.BoundingBox) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID
	for _, u := range s.byID {
		if u.Latitude == nil || u.Longitude == nil {
			continue
		}
		if box.Contains(*u.Latitude, *u.Longitude) {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// UpdateCoordinates records a user's current home position.
func (s *InMemory) UpdateCoordinates(_ context.Context, id uuid.UUID, lat, lng float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.Latitude = &lat
	u.Longitude = &lng
	s.byID[id] = u
	return nil
}
