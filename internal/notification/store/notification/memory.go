// Package notification persists per-user notifications.
package notification

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"relato/internal/notification/models"
	"relato/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID][]models.Notification
}

func NewInMemory() *InMemory {
	return &InMemory{byUser: make(map[uuid.UUID][]models.Notification)}
}

func (s *InMemory) Create(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byUser[n.UserID] = append(s.byUser[n.UserID], n)
	return nil
}

// ListByUser returns the user's newest notifications, capped at limit.
func (s *InMemory) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byUser[userID]
	out := make([]models.Notification, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkRead flags one of the user's notifications as read. Another
// user's notification is not found.
func (s *InMemory) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.byUser[userID] {
		if n.ID == id {
			s.byUser[userID][i].Read = true
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.byUser[userID] {
		s.byUser[userID][i].Read = true
	}
	return nil
}

func (s *InMemory) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.byUser[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
