package application

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNotApplied Status = "NOT_APPLIED"
	StatusApplied    Status = "APPLIED"
	StatusInterview  Status = "INTERVIEW"
	StatusRejected   Status = "REJECTED"
	StatusAccepted   Status = "ACCEPTED"
)

// transitions is the application status state machine.
var transitions = map[Status][]Status{
	StatusNotApplied: {StatusApplied},
	StatusApplied:    {StatusInterview, StatusRejected, StatusAccepted},
	StatusInterview:  {StatusRejected, StatusAccepted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusNotApplied, StatusApplied, StatusInterview, StatusRejected, StatusAccepted:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application tracks a user's progress against one posting. Created lazily
// on first analysis, CV generation, or status update. Unique per (user, job).
type Application struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	JobID            uuid.UUID  `json:"job_id"`
	Status           Status     `json:"status"`
	AppliedAt        *time.Time `json:"applied_at"`
	LastStatusChange time.Time  `json:"last_status_change"`
	NotificationSent bool       `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Analysis is the LLM-produced ATS scoring of a CV against one posting.
type Analysis struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	JobID           uuid.UUID       `json:"job_id"`
	CVText          string          `json:"-"`
	JobDescription  string          `json:"-"`
	MatchScore      float64         `json:"match_score"`
	KeywordAnalysis json.RawMessage `json:"keyword_analysis"`
	SkillsAnalysis  json.RawMessage `json:"skills_analysis"`
	ExperienceMatch json.RawMessage `json:"experience_match"`
	ATSIssues       json.RawMessage `json:"ats_issues"`
	Recommendations json.RawMessage `json:"recommendations"`
	CreatedAt       time.Time       `json:"created_at"`
}

// GeneratedCV is one tailored CV document attached to an application.
type GeneratedCV struct {
	ID            uuid.UUID       `json:"id"`
	ApplicationID uuid.UUID       `json:"application_id"`
	CVJSON        json.RawMessage `json:"cv"`
	RenderedHTML  string          `json:"rendered_html"`
	CreatedAt     time.Time       `json:"created_at"`
}
