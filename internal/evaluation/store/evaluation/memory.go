// Package evaluation persists period evaluations. The memory store
// backs tests and local development; postgres is the production store.
package evaluation

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"relato/internal/evaluation/models"
	"relato/pkg/platform/sentinel"
)

type periodKey struct {
	userID uuid.UUID
	period models.Period
}

type InMemory struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]models.Evaluation
	byPeriod map[periodKey]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[uuid.UUID]models.Evaluation),
		byPeriod: make(map[periodKey]uuid.UUID),
	}
}

// Create stores a new evaluation. Returns sentinel.ErrConflict when the
// user already has an evaluation for the period.
func (s *InMemory) Create(_ context.Context, eval models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := periodKey{userID: eval.UserID, period: eval.Period}
	if _, exists := s.byPeriod[key]; exists {
		return sentinel.ErrConflict
	}

	s.byID[eval.ID] = cloneEvaluation(eval)
	s.byPeriod[key] = eval.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eval, ok := s.byID[id]
	if !ok {
		return models.Evaluation{}, sentinel.ErrNotFound
	}
	return cloneEvaluation(eval), nil
}

func (s *InMemory) FindByUserAndPeriod(_ context.Context, userID uuid.UUID, period models.Period) (models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPeriod[periodKey{userID: userID, period: period}]
	if !ok {
		return models.Evaluation{}, sentinel.ErrNotFound
	}
	return cloneEvaluation(s.byID[id]), nil
}

// ListByUser returns the user's evaluations, newest period first.
func (s *InMemory) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var evals []models.Evaluation
	for _, eval := range s.byID {
		if eval.UserID == userID {
			evals = append(evals, cloneEvaluation(eval))
		}
	}
	sort.Slice(evals, func(i, j int) bool {
		if evals[i].Period.Year != evals[j].Period.Year {
			return evals[i].Period.Year > evals[j].Period.Year
		}
		return evals[i].Period.Index > evals[j].Period.Index
	})
	return evals, nil
}

// ListByUsersAndPeriod returns all evaluations the given users submitted
// for one period.
func (s *InMemory) ListByUsersAndPeriod(_ context.Context, userIDs []uuid.UUID, period models.Period) ([]models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	var evals []models.Evaluation
	for _, eval := range s.byID {
		if _, ok := wanted[eval.UserID]; ok && eval.Period == period {
			evals = append(evals, cloneEvaluation(eval))
		}
	}
	return evals, nil
}

// Update replaces the stored evaluation wholesale, ratings included.
func (s *InMemory) Update(_ context.Context, eval models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[eval.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[eval.ID] = cloneEvaluation(eval)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eval, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byPeriod, periodKey{userID: eval.UserID, period: eval.Period})
	return nil
}

func cloneEvaluation(eval models.Evaluation) models.Evaluation {
	out := eval
	out.Ratings = make([]models.CategoryRating, len(eval.Ratings))
	copy(out.Ratings, eval.Ratings)
	return out
}
