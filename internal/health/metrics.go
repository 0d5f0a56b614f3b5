package health

import "math"

// minBurnRate keeps runway finite when there is no recorded spending.
// A user with no expenses therefore shows runway == liquid assets.
const minBurnRate = 1.0

// Metrics are the ratios derived from an Input.
type Metrics struct {
	SavingsRate       float64 `json:"savings_rate"`
	MonthlyBurnRate   float64 `json:"monthly_burn_rate"`
	CashRunwayMonths  float64 `json:"cash_runway_months"` // +Inf when burn rate is not positive
	DebtToIncomeRatio float64 `json:"debt_to_income_ratio"`
	CreditUtilization float64 `json:"credit_utilization"`
}

// Derive computes the five metrics. It does not validate in.
func Derive(in Input) Metrics {
	burn := burnRate(in.Last3MonthsExpenses)

	return Metrics{
		SavingsRate:       savingsRate(in.MonthlyIncome, in.MonthlyExpense),
		MonthlyBurnRate:   burn,
		CashRunwayMonths:  cashRunway(in.LiquidAssets, burn),
		DebtToIncomeRatio: debtToIncome(in.TotalMonthlyEMI, in.MonthlyIncome),
		CreditUtilization: creditUtilization(in.TotalCreditOutstanding, in.TotalCreditLimit),
	}
}

func savingsRate(income, expense float64) float64 {
	if income == 0 {
		if expense > 0 {
			return -100
		}
		return 0
	}
	return (income - expense) / income * 100
}

// activeMonths counts months with spending, never returning less than 1.
func activeMonths(history []float64) float64 {
	n := 0
	for _, v := range history {
		if v > 0 {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return float64(n)
}

func burnRate(history []float64) float64 {
	var sum float64
	for _, v := range history {
		sum += v
	}
	burn := sum / activeMonths(history)
	if burn == 0 {
		return minBurnRate
	}
	return burn
}

func cashRunway(liquid, burn float64) float64 {
	if burn <= 0 {
		return math.Inf(1)
	}
	return liquid / burn
}

func debtToIncome(emi, income float64) float64 {
	if income == 0 {
		if emi > 0 {
			return 100
		}
		return 0
	}
	return emi / income * 100
}

func creditUtilization(outstanding, limit float64) float64 {
	if limit == 0 {
		return 0
	}
	return outstanding / limit * 100
}
