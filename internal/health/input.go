package health

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when a snapshot cannot be scored.
var ErrInvalidInput = errors.New("invalid financial health input")

// MaxHistoryMonths is the number of monthly expense totals the scorer looks at.
const MaxHistoryMonths = 3

// Input is a point-in-time snapshot of a user's finances.
type Input struct {
	MonthlyIncome  float64 `json:"monthly_income"`
	MonthlyExpense float64 `json:"monthly_expense"`
	// Last3MonthsExpenses holds monthly expense totals, most recent first.
	// Fewer than three entries is allowed.
	Last3MonthsExpenses    []float64 `json:"last_3_months_expenses"`
	LiquidAssets           float64   `json:"liquid_assets"`
	TotalMonthlyEMI        float64   `json:"total_monthly_emi"`
	TotalCreditOutstanding float64   `json:"total_credit_outstanding"`
	TotalCreditLimit       float64   `json:"total_credit_limit"`
}

// Validate rejects NaN, infinite and negative amounts and over-long history.
func (in Input) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"monthly_income", in.MonthlyIncome},
		{"monthly_expense", in.MonthlyExpense},
		{"liquid_assets", in.LiquidAssets},
		{"total_monthly_emi", in.TotalMonthlyEMI},
		{"total_credit_outstanding", in.TotalCreditOutstanding},
		{"total_credit_limit", in.TotalCreditLimit},
	}
	for _, f := range fields {
		if err := checkAmount(f.name, f.value); err != nil {
			return err
		}
	}

	if len(in.Last3MonthsExpenses) > MaxHistoryMonths {
		return fmt.Errorf("%w: last_3_months_expenses has %d entries, at most %d allowed",
			ErrInvalidInput, len(in.Last3MonthsExpenses), MaxHistoryMonths)
	}
	for i, v := range in.Last3MonthsExpenses {
		if err := checkAmount(fmt.Sprintf("last_3_months_expenses[%d]", i), v); err != nil {
			return err
		}
	}
	return nil
}

func checkAmount(name string, v float64) error {
	switch {
	case math.IsNaN(v):
		return fmt.Errorf("%w: %s is NaN", ErrInvalidInput, name)
	case math.IsInf(v, 0):
		return fmt.Errorf("%w: %s is not finite", ErrInvalidInput, name)
	case v < 0:
		return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidInput, name, v)
	}
	return nil
}
