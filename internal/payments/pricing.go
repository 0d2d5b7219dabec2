package payments

import (
	"fmt"

	"jobscout/internal/domain/billing"
)

// Amounts are KES per billing cycle.
var planPricing = map[billing.Plan]map[billing.Cycle]float64{
	billing.PlanBasic: {
		billing.CycleMonthly:    500,
		billing.CycleQuarterly:  1350,
		billing.CycleSemiAnnual: 2400,
	},
	billing.PlanPremium: {
		billing.CycleMonthly:    1000,
		billing.CycleQuarterly:  2700,
		billing.CycleSemiAnnual: 4800,
	},
}

var cycleDays = map[billing.Cycle]int{
	billing.CycleMonthly:    30,
	billing.CycleQuarterly:  90,
	billing.CycleSemiAnnual: 180,
}

// Limits are per billing cycle. Unlimited is modeled as -1.
type PlanLimits struct {
	JobRecommendations int `json:"job_recommendations"`
	CVGenerations      int `json:"cv_generations"`
}

const Unlimited = -1

var planLimits = map[billing.Plan]PlanLimits{
	billing.PlanBasic:   {JobRecommendations: 50, CVGenerations: 5},
	billing.PlanPremium: {JobRecommendations: Unlimited, CVGenerations: Unlimited},
}

func Price(plan billing.Plan, cycle billing.Cycle) (float64, error) {
	cycles, ok := planPricing[plan]
	if !ok {
		return 0, fmt.Errorf("unknown plan %q", plan)
	}
	amount, ok := cycles[cycle]
	if !ok {
		return 0, fmt.Errorf("unknown billing cycle %q", cycle)
	}
	return amount, nil
}

func CycleDays(cycle billing.Cycle) (int, error) {
	days, ok := cycleDays[cycle]
	if !ok {
		return 0, fmt.Errorf("unknown billing cycle %q", cycle)
	}
	return days, nil
}

func LimitsFor(plan billing.Plan) PlanLimits {
	limits, ok := planLimits[plan]
	if !ok {
		return PlanLimits{}
	}
	return limits
}

// WithinLimit reports whether used is still under the limit; Unlimited
// always passes.
func WithinLimit(limit, used int) bool {
	if limit == Unlimited {
		return true
	}
	return used < limit
}
