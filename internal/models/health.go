package models

import (
	"math"
	"time"

	"github.com/Dan9191/payfirst/internal/finance"
	"github.com/Dan9191/payfirst/internal/health"
)

// FallbackSummary replaces the narrative when the narrative service fails.
const FallbackSummary = "AI insights are currently unavailable. Your score and metrics above are up to date."

// Narrative is the prose explanation of a health result
type Narrative struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

// FallbackNarrative is returned in place of a generated narrative.
func FallbackNarrative() Narrative {
	return Narrative{
		Summary:         FallbackSummary,
		Strengths:       []string{},
		Risks:           []string{},
		Recommendations: []string{},
	}
}

// HealthMetrics is the JSON form of health.Metrics. Unbounded runway is
// encoded as a null CashRunwayMonths with RunwayUnbounded set.
type HealthMetrics struct {
	SavingsRate       float64  `json:"savings_rate"`
	MonthlyBurnRate   float64  `json:"monthly_burn_rate"`
	CashRunwayMonths  *float64 `json:"cash_runway_months"`
	RunwayUnbounded   bool     `json:"runway_unbounded"`
	DebtToIncomeRatio float64  `json:"debt_to_income_ratio"`
	CreditUtilization float64  `json:"credit_utilization"`
}

// HealthReport is the financial health response
type HealthReport struct {
	Input              *health.Input     `json:"input,omitempty"`
	Metrics            HealthMetrics     `json:"metrics"`
	FinalScore         float64           `json:"final_score"`
	Status             health.Status     `json:"status"`
	Breakdown          *health.Breakdown `json:"breakdown,omitempty"`
	Narrative          Narrative         `json:"narrative"`
	NarrativeAvailable bool              `json:"narrative_available"`
	GeneratedAt        time.Time         `json:"generated_at"`
}

// NewHealthMetrics converts engine metrics into their JSON-safe form.
func NewHealthMetrics(m health.Metrics) HealthMetrics {
	out := HealthMetrics{
		SavingsRate:       finance.Round2(m.SavingsRate),
		MonthlyBurnRate:   finance.Round2(m.MonthlyBurnRate),
		DebtToIncomeRatio: finance.Round2(m.DebtToIncomeRatio),
		CreditUtilization: finance.Round2(m.CreditUtilization),
	}
	if math.IsInf(m.CashRunwayMonths, 1) {
		out.RunwayUnbounded = true
	} else {
		runway := finance.Round2(m.CashRunwayMonths)
		out.CashRunwayMonths = &runway
	}
	return out
}

// NewHealthReport assembles a report. Breakdown is attached only when withBreakdown is set.
func NewHealthReport(res health.Result, n Narrative, narrativeAvailable, withBreakdown bool, at time.Time) *HealthReport {
	r := &HealthReport{
		Metrics:            NewHealthMetrics(res.Metrics),
		FinalScore:         res.FinalScore,
		Status:             res.Status,
		Narrative:          n,
		NarrativeAvailable: narrativeAvailable,
		GeneratedAt:        at,
	}
	if withBreakdown {
		b := res.Breakdown
		r.Breakdown = &b
	}
	return r
}
