// Package models defines citizen reports and their lifecycle.
package models

import (
	"time"

	"github.com/google/uuid"

	evalModels "relato/internal/evaluation/models"
)

// Status is the report lifecycle. Reports enter as Pending and move
// under staff control only.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusRejected   Status = "REJECTED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Category reuses the evaluation taxonomy; reports and evaluations
// describe the same civic concerns.
type Category = evalModels.Category

// Report is a citizen's geolocated problem report. Images holds the
// storage paths of the photos that passed moderation.
type Report struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Title       string     `json:"title,omitempty"`
	Category    Category   `json:"category"`
	Description string     `json:"description"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Address     string     `json:"address,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Comment     string     `json:"comment,omitempty"`
	StaffID     *uuid.UUID `json:"staffId,omitempty"`
	Images      []string   `json:"images"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// MapPoint is the subset of a report shown on the public map.
// Rejected reports never appear.
type MapPoint struct {
	ID        uuid.UUID `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Category  Category  `json:"category"`
	Status    Status    `json:"status"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filter narrows report listings. Zero values match everything.
type Filter struct {
	Status   Status
	Category Category
	Priority Priority
	Page     int
	Limit    int
}
