// Package activity persists engagement activity events. The store is
// append-only: events are never updated or removed.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"relato/internal/engagement/models"
)

// InMemory keeps activity events per user. Concurrent appends for the same
// user are independent writes; there is no read-modify-write cycle.
type InMemory struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]models.ActivityEvent
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[uuid.UUID][]models.ActivityEvent)}
}

func (s *InMemory) Append(_ context.Context, event models.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.UserID] = append(s.events[event.UserID], event)
	return nil
}

func (s *InMemory) ListByUserSince(_ context.Context, userID uuid.UUID, since time.Time) ([]models.ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ActivityEvent
	for _, e := range s.events[userID] {
		if !e.OccurredAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByUserBetween returns events with from <= OccurredAt < to.
func (s *InMemory) ListByUserBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ActivityEvent
	for _, e := range s.events[userID] {
		if !e.OccurredAt.Before(from) && e.OccurredAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemory) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events[userID]), nil
}
