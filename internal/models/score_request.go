package models

import (
	"fmt"

	"github.com/Dan9191/payfirst/internal/health"
)

// ScoreRequest is the wire form of health.Input. Fields are pointers so an
// absent or null value is rejected instead of being read as zero.
type ScoreRequest struct {
	MonthlyIncome          *float64   `json:"monthly_income"`
	MonthlyExpense         *float64   `json:"monthly_expense"`
	Last3MonthsExpenses    []*float64 `json:"last_3_months_expenses"`
	LiquidAssets           *float64   `json:"liquid_assets"`
	TotalMonthlyEMI        *float64   `json:"total_monthly_emi"`
	TotalCreditOutstanding *float64   `json:"total_credit_outstanding"`
	TotalCreditLimit       *float64   `json:"total_credit_limit"`
}

// Input converts the request into an engine input. A missing history list
// means no recorded months; a null entry inside it is an error.
func (r ScoreRequest) Input() (health.Input, error) {
	required := []struct {
		name string
		v    *float64
	}{
		{"monthly_income", r.MonthlyIncome},
		{"monthly_expense", r.MonthlyExpense},
		{"liquid_assets", r.LiquidAssets},
		{"total_monthly_emi", r.TotalMonthlyEMI},
		{"total_credit_outstanding", r.TotalCreditOutstanding},
		{"total_credit_limit", r.TotalCreditLimit},
	}
	for _, f := range required {
		if f.v == nil {
			return health.Input{}, fmt.Errorf("%w: %s is required", health.ErrInvalidInput, f.name)
		}
	}

	history := make([]float64, len(r.Last3MonthsExpenses))
	for i, v := range r.Last3MonthsExpenses {
		if v == nil {
			return health.Input{}, fmt.Errorf("%w: last_3_months_expenses[%d] is null", health.ErrInvalidInput, i)
		}
		history[i] = *v
	}

	return health.Input{
		MonthlyIncome:          *r.MonthlyIncome,
		MonthlyExpense:         *r.MonthlyExpense,
		Last3MonthsExpenses:    history,
		LiquidAssets:           *r.LiquidAssets,
		TotalMonthlyEMI:        *r.TotalMonthlyEMI,
		TotalCreditOutstanding: *r.TotalCreditOutstanding,
		TotalCreditLimit:       *r.TotalCreditLimit,
	}, nil
}
