package match

import (
	"time"

	"github.com/google/uuid"
)

// MinScore is the persistence threshold: matches below it are never stored.
const MinScore = 75.0

// Match is a scored (user, job) association produced by the batch matcher.
// Unique per (user, job); immutable after creation except for the flags.
type Match struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	JobID        uuid.UUID `json:"job_id"`
	Score        float64   `json:"match_score"`
	Rationale    string    `json:"rationale"`
	IsBookmarked bool      `json:"is_bookmarked"`
	IsHidden     bool      `json:"is_hidden"`
	CreatedAt    time.Time `json:"created_at"`
}
