// Package service implements activity recording and the streak and
// calendar views derived from it.
package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	dErrors "relato/pkg/domain-errors"

	"relato/internal/engagement/metrics"
	"relato/internal/engagement/models"
	"relato/internal/engagement/stream"
	"relato/pkg/requestcontext"
)

// ActivityStore is the append-only event log backing the engine.
type ActivityStore interface {
	Append(ctx context.Context, event models.ActivityEvent) error
	ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.ActivityEvent, error)
	ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ActivityEvent, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// ReportCounter reports how many reports a user has filed.
type ReportCounter interface {
	CountByReporter(ctx context.Context, userID uuid.UUID) (int, error)
}

// EvaluationChecker reports whether the user still owes an evaluation
// for the current period.
type EvaluationChecker interface {
	NeedsEvaluation(ctx context.Context, userID uuid.UUID) (bool, error)
}

const DefaultStreakLookbackDays = 365

type Engine struct {
	store       ActivityStore
	publisher   *stream.Publisher
	reports     ReportCounter
	evaluations EvaluationChecker

	lookbackDays int
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithPublisher(p *stream.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithReportCounter(rc ReportCounter) Option {
	return func(e *Engine) { e.reports = rc }
}

func WithEvaluationChecker(ec EvaluationChecker) Option {
	return func(e *Engine) { e.evaluations = ec }
}

// WithStreakLookback bounds how far back streak computation reads events.
func WithStreakLookback(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.lookbackDays = days
		}
	}
}

func New(store ActivityStore, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		lookbackDays: DefaultStreakLookbackDays,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordActivity appends a qualifying action to the user's event log.
// It never returns an error: recording is a side effect of the primary
// operation and must not fail it, so storage failures are logged and
// swallowed here.
func (e *Engine) RecordActivity(ctx context.Context, userID uuid.UUID, activityType models.ActivityType, metadata map[string]any) {
	event := models.ActivityEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       activityType,
		Metadata:   metadata,
		OccurredAt: requestcontext.Now(ctx),
	}

	if err := e.store.Append(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "record activity",
			"error", err,
			"user_id", userID,
			"activity_type", activityType,
		)
		return
	}

	if e.metrics != nil {
		e.metrics.ActivitiesRecorded.WithLabelValues(string(activityType)).Inc()
	}
	if e.publisher != nil {
		e.publisher.Publish(ctx, event)
	}
}

// ComputeStreak derives current and longest streaks from the user's
// event history. Days are counted in UTC; multiple events on one day
// count once. Events stamped after the reference time are ignored.
func (e *Engine) ComputeStreak(ctx context.Context, userID uuid.UUID) (models.StreakSummary, error) {
	now := requestcontext.Now(ctx)
	since := now.AddDate(0, 0, -e.lookbackDays)

	events, err := e.store.ListByUserSince(ctx, userID, since)
	if err != nil {
		return models.StreakSummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "list activity events")
	}

	today := dateOf(now)
	days := distinctDays(events, today)
	summary := streakFrom(days, today)

	if e.metrics != nil && summary.CurrentStreak > 0 {
		e.metrics.StreakLength.Observe(float64(summary.CurrentStreak))
	}
	return summary, nil
}

// BuildCalendar returns one entry per day of the requested month, in
// order, with per-day activity counts.
func (e *Engine) BuildCalendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]models.CalendarDay, error) {
	if month < time.January || month > time.December {
		return nil, dErrors.Newf(dErrors.CodeValidation, "month out of range: %d", month)
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	events, err := e.store.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list activity events")
	}

	counts := make(map[time.Time]int)
	for _, event := range events {
		counts[dateOf(event.OccurredAt)]++
	}

	daysInMonth := to.AddDate(0, 0, -1).Day()
	calendar := make([]models.CalendarDay, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		count := counts[date]
		calendar = append(calendar, models.CalendarDay{
			Date:          date.Format(time.DateOnly),
			HasActivity:   count > 0,
			ActivityCount: count,
		})
	}
	return calendar, nil
}

// UserStats aggregates totals and streaks for the dashboard. The report
// and evaluation collaborators are optional; their fields stay zero when
// unwired.
func (e *Engine) UserStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	total, err := e.store.CountByUser(ctx, userID)
	if err != nil {
		return models.UserStats{}, dErrors.Wrap(err, dErrors.CodeInternal, "count activity events")
	}

	streak, err := e.ComputeStreak(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}

	stats := models.UserStats{
		TotalActivities: total,
		CurrentStreak:   streak.CurrentStreak,
		LongestStreak:   streak.LongestStreak,
	}

	if e.reports != nil {
		reports, err := e.reports.CountByReporter(ctx, userID)
		if err != nil {
			return models.UserStats{}, dErrors.Wrap(err, dErrors.CodeInternal, "count reports")
		}
		stats.TotalReports = reports
	}
	if e.evaluations != nil {
		needs, err := e.evaluations.NeedsEvaluation(ctx, userID)
		if err != nil {
			return models.UserStats{}, dErrors.Wrap(err, dErrors.CodeInternal, "check evaluation status")
		}
		stats.NeedsEvaluation = needs
	}
	return stats, nil
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// distinctDays collapses events to their unique activity dates, sorted
// ascending. Dates after the reference day are dropped so clock skew in
// stored events cannot anchor a streak in the future.
func distinctDays(events []models.ActivityEvent, today time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(events))
	for _, event := range events {
		day := dateOf(event.OccurredAt)
		if day.After(today) {
			continue
		}
		seen[day] = struct{}{}
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// streakFrom walks the sorted distinct days. The current streak is
// anchored at today, or yesterday when today has no activity yet; any
// older anchor means the streak is broken and current is zero.
func streakFrom(days []time.Time, today time.Time) models.StreakSummary {
	if len(days) == 0 {
		return models.StreakSummary{}
	}

	active := make(map[time.Time]struct{}, len(days))
	for _, day := range days {
		active[day] = struct{}{}
	}

	var summary models.StreakSummary

	anchor := today
	if _, ok := active[anchor]; !ok {
		anchor = today.AddDate(0, 0, -1)
	}
	for {
		if _, ok := active[anchor]; !ok {
			break
		}
		summary.CurrentStreak++
		anchor = anchor.AddDate(0, 0, -1)
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	summary.LongestStreak = longest
	return summary
}
