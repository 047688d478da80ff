package models

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeInfo         Type = "info"
	TypeReportUpdate Type = "report_update"
)

// Notification is a persisted per-user message with a read flag. The
// same payload fans out over the live channel when one is configured.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
