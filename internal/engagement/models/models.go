// Package models defines engagement facts and the values derived from them.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies a qualifying engagement action.
type ActivityType string

const (
	ActivityQuickAnswer         ActivityType = "QUICK_ANSWER"
	ActivityReportCreated       ActivityType = "REPORT_CREATED"
	ActivityEvaluationCompleted ActivityType = "EVALUATION_COMPLETED"
)

// ActivityEvent is an append-only fact that a user performed a qualifying
// action. Events are never mutated or deleted.
type ActivityEvent struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Type       ActivityType
	Metadata   map[string]any
	OccurredAt time.Time
}

// StreakSummary is derived on demand from event history; it is not persisted.
type StreakSummary struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// CalendarDay reports one day of a requested month. Days outside the month
// are never included; padding is a presentation concern.
type CalendarDay struct {
	Date          string `json:"date"`
	HasActivity   bool   `json:"hasActivity"`
	ActivityCount int    `json:"activityCount"`
}

// UserStats summarizes a user's engagement for the dashboard.
type UserStats struct {
	TotalActivities int  `json:"totalActivities"`
	TotalReports    int  `json:"totalReports"`
	CurrentStreak   int  `json:"currentStreak"`
	LongestStreak   int  `json:"longestStreak"`
	NeedsEvaluation bool `json:"needsEvaluation"`
}
