// Package service coordinates report intake: image moderation, report
// persistence, and the best-effort side effects that follow.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dErrors "relato/pkg/domain-errors"

	engModels "relato/internal/engagement/models"
	evalModels "relato/internal/evaluation/models"
	modModels "relato/internal/moderation/models"
	notifModels "relato/internal/notification/models"
	"relato/internal/report/metrics"
	"relato/internal/report/models"
	"relato/pkg/platform/sentinel"
	"relato/pkg/requestcontext"
)

// Moderator screens candidate images before a report is accepted.
type Moderator interface {
	ModerateBatch(ctx context.Context, candidates []modModels.Candidate) (modModels.BatchResult, error)
}

// Store persists reports.
type Store interface {
	Create(ctx context.Context, r models.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (models.Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter models.Filter) ([]models.Report, int, error)
	List(ctx context.Context, filter models.Filter) ([]models.Report, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, comment string, staffID uuid.UUID, at time.Time) (models.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByReporter(ctx context.Context, userID uuid.UUID) (int, error)
	MapPoints(ctx context.Context) ([]models.MapPoint, error)
}

// ActivityRecorder records engagement events. It never fails.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, activityType engModels.ActivityType, metadata map[string]any)
}

// Notifier delivers user notifications.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string, typ notifModels.Type) (notifModels.Notification, error)
	NotifyReportStatus(ctx context.Context, userID uuid.UUID, status string) (notifModels.Notification, error)
}

const minDescriptionLength = 10

// Coordinator runs report intake and the staff-side lifecycle.
type Coordinator struct {
	moderator Moderator
	store     Store
	activity  ActivityRecorder
	notifier  Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Coordinator)

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithActivityRecorder wires engagement recording into intake.
func WithActivityRecorder(a ActivityRecorder) Option {
	return func(c *Coordinator) { c.activity = a }
}

// WithNotifier wires notification fan-out into intake and status
// updates.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

func New(moderator Moderator, store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		moderator: moderator,
		store:     store,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IntakeRequest carries a new report and its candidate images.
type IntakeRequest struct {
	UserID      uuid.UUID
	Title       string
	Category    models.Category
	Description string
	Latitude    float64
	Longitude   float64
	Address     string
	Priority    models.Priority
	Candidates  []modModels.Candidate
}

// IntakeResult is the created report plus the moderation verdicts, so
// callers can tell the reporter which images were dropped.
type IntakeResult struct {
	Report   models.Report       `json:"report"`
	Verdicts []modModels.Verdict `json:"verdicts"`
}

// Intake moderates the candidate images and creates the report when at
// least one image survives. Engagement recording and the confirmation
// notification are best-effort: their failure never unwinds a created
// report.
func (c *Coordinator) Intake(ctx context.Context, req IntakeRequest) (IntakeResult, error) {
	if err := validateIntake(req); err != nil {
		return IntakeResult{}, err
	}

	batch, err := c.moderator.ModerateBatch(ctx, req.Candidates)
	if err != nil {
		return IntakeResult{}, err
	}
	if len(batch.Accepted) == 0 {
		if c.metrics != nil {
			c.metrics.IntakeRejected.Inc()
		}
		return IntakeResult{}, dErrors.New(dErrors.CodeValidation, "all images were rejected by moderation")
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	now := requestcontext.Now(ctx)
	images := make([]string, 0, len(batch.Accepted))
	for _, candidate := range batch.Accepted {
		images = append(images, candidate.Path)
	}

	report := models.Report{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		Priority:    req.Priority,
		Status:      models.StatusPending,
		Images:      images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.store.Create(ctx, report); err != nil {
		return IntakeResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "store report")
	}

	if c.metrics != nil {
		c.metrics.ReportsCreated.WithLabelValues(string(report.Category)).Inc()
		c.metrics.ImagesPerReport.Observe(float64(len(images)))
	}

	if c.activity != nil {
		c.activity.RecordActivity(ctx, req.UserID, engModels.ActivityReportCreated, map[string]any{
			"report_id": report.ID.String(),
			"category":  string(report.Category),
		})
	}
	if c.notifier != nil {
		if _, err := c.notifier.Notify(ctx, req.UserID,
			"Report Received",
			"Your report was received and is awaiting review.",
			notifModels.TypeInfo,
		); err != nil {
			c.logger.WarnContext(ctx, "intake notification failed",
				"error", err,
				"report_id", report.ID,
			)
		}
	}

	return IntakeResult{Report: report, Verdicts: batch.Verdicts}, nil
}

func (c *Coordinator) GetReport(ctx context.Context, id uuid.UUID) (models.Report, error) {
	report, err := c.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Report{}, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "find report")
	}
	return report, nil
}

// ListPage pairs a result page with its total for pagination.
type ListPage struct {
	Reports []models.Report `json:"reports"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

func (c *Coordinator) ListByUser(ctx context.Context, userID uuid.UUID, filter models.Filter) (ListPage, error) {
	reports, total, err := c.store.ListByUser(ctx, userID, filter)
	if err != nil {
		return ListPage{}, dErrors.Wrap(err, dErrors.CodeInternal, "list reports")
	}
	return newPage(reports, total, filter), nil
}

func (c *Coordinator) List(ctx context.Context, filter models.Filter) (ListPage, error) {
	reports, total, err := c.store.List(ctx, filter)
	if err != nil {
		return ListPage{}, dErrors.Wrap(err, dErrors.CodeInternal, "list reports")
	}
	return newPage(reports, total, filter), nil
}

// UpdateStatus is the staff operation moving a report through its
// lifecycle. The reporter is notified best-effort.
func (c *Coordinator) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, comment string, staffID uuid.UUID) (models.Report, error) {
	if !models.ValidStatus(status) {
		return models.Report{}, dErrors.Newf(dErrors.CodeValidation, "invalid status: %s", status)
	}

	report, err := c.store.UpdateStatus(ctx, id, status, comment, staffID, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Report{}, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "update report status")
	}

	if c.metrics != nil {
		c.metrics.StatusUpdates.WithLabelValues(string(status)).Inc()
	}
	if c.notifier != nil {
		if _, err := c.notifier.NotifyReportStatus(ctx, report.UserID, string(status)); err != nil {
			c.logger.WarnContext(ctx, "status notification failed",
				"error", err,
				"report_id", report.ID,
			)
		}
	}
	return report, nil
}

// DeleteReport removes a report. Only the reporter may delete their
// own report through this path.
func (c *Coordinator) DeleteReport(ctx context.Context, id, userID uuid.UUID) error {
	report, err := c.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if report.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "report not found")
	}
	if err := c.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete report")
	}
	return nil
}

func (c *Coordinator) MapPoints(ctx context.Context) ([]models.MapPoint, error) {
	points, err := c.store.MapPoints(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load map points")
	}
	return points, nil
}

// CountByReporter satisfies the engagement engine's report counter.
func (c *Coordinator) CountByReporter(ctx context.Context, userID uuid.UUID) (int, error) {
	return c.store.CountByReporter(ctx, userID)
}

func validateIntake(req IntakeRequest) error {
	if !evalModels.ValidCategory(req.Category) {
		return dErrors.Newf(dErrors.CodeValidation, "unknown category: %s", req.Category)
	}
	if len(req.Description) < minDescriptionLength {
		return dErrors.Newf(dErrors.CodeValidation, "description must be at least %d characters", minDescriptionLength)
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return dErrors.New(dErrors.CodeValidation, "coordinates out of range")
	}
	if req.Priority != "" && !models.ValidPriority(req.Priority) {
		return dErrors.Newf(dErrors.CodeValidation, "invalid priority: %s", req.Priority)
	}
	if len(req.Candidates) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one image is required")
	}
	return nil
}

func newPage(reports []models.Report, total int, filter models.Filter) ListPage {
	if reports == nil {
		reports = []models.Report{}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	return ListPage{Reports: reports, Total: total, Page: page, Limit: limit}
}
