// Package service persists notifications and fans them out to live
// subscribers.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	dErrors "relato/pkg/domain-errors"

	"relato/internal/notification/models"
	"relato/pkg/platform/sentinel"
	"relato/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, n models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Publisher delivers a notification to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

const defaultListLimit = 10

type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify persists a notification and fans it out. A fan-out failure is
// logged, not returned: the stored copy is the source of truth.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, title, message string, typ models.Type) (models.Notification, error) {
	if typ == "" {
		typ = models.TypeInfo
	}
	n := models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: requestcontext.Now(ctx),
	}

	if err := s.store.Create(ctx, n); err != nil {
		return models.Notification{}, dErrors.Wrap(err, dErrors.CodeInternal, "store notification")
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n); err != nil {
			s.logger.WarnContext(ctx, "notification fan-out failed",
				"error", err,
				"user_id", userID,
			)
		}
	}
	return n, nil
}

// NotifyReportStatus tells a reporter their report moved to a new
// status.
func (s *Service) NotifyReportStatus(ctx context.Context, userID uuid.UUID, status string) (models.Notification, error) {
	message := "Your report status was updated"
	switch status {
	case "IN_PROGRESS":
		message = "Your report is being reviewed"
	case "RESOLVED":
		message = "Your report has been resolved"
	case "REJECTED":
		message = "Your report has been rejected"
	}
	return s.Notify(ctx, userID, "Report Status Updated", message, models.TypeReportUpdate)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	out, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list notifications")
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.store.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark notification read")
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.MarkAllRead(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark notifications read")
	}
	return nil
}

func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count unread notifications")
	}
	return count, nil
}
