// Package report persists citizen reports.
package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"relato/internal/report/models"
	"relato/pkg/platform/sentinel"
)

type InMemory struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]models.Report
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[uuid.UUID]models.Report)}
}

func (s *InMemory) Create(_ context.Context, r models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[r.ID] = cloneReport(r)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return models.Report{}, sentinel.ErrNotFound
	}
	return cloneReport(r), nil
}

// ListByUser returns the user's reports matching the filter, newest
// first, paginated.
func (s *InMemory) ListByUser(_ context.Context, userID uuid.UUID, filter models.Filter) ([]models.Report, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Report
	for _, r := range s.byID {
		if r.UserID != userID || !matches(r, filter) {
			continue
		}
		matched = append(matched, cloneReport(r))
	}
	return paginate(matched, filter)
}

// List returns all reports matching the filter, newest first; the
// staff-facing view.
func (s *InMemory) List(_ context.Context, filter models.Filter) ([]models.Report, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Report
	for _, r := range s.byID {
		if matches(r, filter) {
			matched = append(matched, cloneReport(r))
		}
	}
	return paginate(matched, filter)
}

// UpdateStatus moves the report to a new status, recording the acting
// staff member and an optional comment.
func (s *InMemory) UpdateStatus(_ context.Context, id uuid.UUID, status models.Status, comment string, staffID uuid.UUID, at time.Time) (models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return models.Report{}, sentinel.ErrNotFound
	}
	r.Status = status
	r.Comment = comment
	r.StaffID = &staffID
	r.UpdatedAt = at
	s.byID[id] = r
	return cloneReport(r), nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *InMemory) CountByReporter(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.byID {
		if r.UserID == userID {
			count++
		}
	}
	return count, nil
}

// MapPoints returns the coordinates of every non-rejected report.
func (s *InMemory) MapPoints(_ context.Context) ([]models.MapPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var points []models.MapPoint
	for _, r := range s.byID {
		if r.Status == models.StatusRejected {
			continue
		}
		points = append(points, models.MapPoint{
			ID:        r.ID,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Category:  r.Category,
			Status:    r.Status,
			Priority:  r.Priority,
			CreatedAt: r.CreatedAt,
		})
	}
	return points, nil
}

func matches(r models.Report, filter models.Filter) bool {
	if filter.Status != "" && r.Status != filter.Status {
		return false
	}
	if filter.Category != "" && r.Category != filter.Category {
		return false
	}
	if filter.Priority != "" && r.Priority != filter.Priority {
		return false
	}
	return true
}

func paginate(matched []models.Report, filter models.Filter) ([]models.Report, int, error) {
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := min(start+limit, total)
	return matched[start:end], total, nil
}

func cloneReport(r models.Report) models.Report {
	out := r
	out.Images = make([]string, len(r.Images))
	copy(out.Images, r.Images)
	if r.StaffID != nil {
		staffID := *r.StaffID
		out.StaffID = &staffID
	}
	return out
}
