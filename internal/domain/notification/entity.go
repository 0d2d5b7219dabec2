package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeJobMatch            Type = "JOB_MATCH"
	TypeApplicationReminder Type = "APPLICATION_REMINDER"
	TypeSubscription        Type = "SUBSCRIPTION"
	TypeCVAnalysis          Type = "CV_ANALYSIS"
	TypeSystem              Type = "SYSTEM"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      Type      `json:"notification_type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
