package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyInstallment returns the fixed annuity payment for a loan, rounded to
// two decimals. annualRate is a percentage (12.5 means 12.5%).
func MonthlyInstallment(principal, annualRate float64, termMonths int) (float64, error) {
	if principal <= 0 {
		return 0, fmt.Errorf("principal must be positive, got %v", principal)
	}
	if annualRate < 0 {
		return 0, fmt.Errorf("interest rate must not be negative, got %v", annualRate)
	}
	if termMonths <= 0 {
		return 0, fmt.Errorf("term must be at least one month, got %d", termMonths)
	}

	p := decimal.NewFromFloat(principal)
	n := decimal.NewFromInt(int64(termMonths))

	if annualRate == 0 {
		return p.DivRound(n, 2).InexactFloat64(), nil
	}

	r := decimal.NewFromFloat(annualRate).Div(hundred).Div(twelve)
	growth := r.Add(decimal.NewFromInt(1)).Pow(n)
	emi := p.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))

	return emi.Round(2).InexactFloat64(), nil
}

// Round2 rounds an amount to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Sum adds amounts without accumulating float error.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
