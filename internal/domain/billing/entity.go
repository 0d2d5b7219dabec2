package billing

import (
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
)

type Cycle string

const (
	CycleMonthly    Cycle = "monthly"
	CycleQuarterly  Cycle = "quarterly"
	CycleSemiAnnual Cycle = "semi-annual"
)

func (p Plan) Valid() bool {
	return p == PlanBasic || p == PlanPremium
}

func (c Cycle) Valid() bool {
	return c == CycleMonthly || c == CycleQuarterly || c == CycleSemiAnnual
}

// Subscription is 1:1 with a user and carries the usage counters the
// feature-limit checks read.
type Subscription struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	Plan                Plan      `json:"plan"`
	BillingCycle        Cycle     `json:"billing_cycle"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	IsActive            bool      `json:"is_active"`
	PaymentID           string    `json:"-"`
	RecommendationsUsed int       `json:"recommendations_used"`
	CVGenerationsUsed   int       `json:"cv_generations_used"`
	NotificationSent    bool      `json:"-"`
}

func (s Subscription) IsValid(now time.Time) bool {
	return s.IsActive && s.EndDate.After(now)
}
