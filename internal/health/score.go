package health

import "math"

// Status is the label attached to a final score.
type Status string

const (
	StatusExcellent    Status = "Excellent"
	StatusStable       Status = "Stable"
	StatusModerateRisk Status = "Moderate Risk"
	StatusHighRisk     Status = "High Risk"
	StatusCritical     Status = "Critical"
)

// Lower bounds of each status band. A score equal to a bound belongs to that band.
const (
	ThresholdExcellent    = 85.0
	ThresholdStable       = 70.0
	ThresholdModerateRisk = 50.0
	ThresholdHighRisk     = 30.0
)

// riskPenalty is deducted once per raised risk flag.
const riskPenalty = 5.0

// Breakdown lists the points awarded per bucket.
type Breakdown struct {
	CashRunway        float64 `json:"cash_runway"`
	SavingsRate       float64 `json:"savings_rate"`
	DebtToIncome      float64 `json:"debt_to_income"`
	CreditUtilization float64 `json:"credit_utilization"`
	ExpenseDiscipline float64 `json:"expense_discipline"`
	Trend             float64 `json:"trend"`
	Volatility        float64 `json:"volatility"`
	Deductions        float64 `json:"deductions"` // zero or negative
}

// Strength is the absolute-strength subtotal.
func (b Breakdown) Strength() float64 {
	return b.CashRunway + b.SavingsRate + b.DebtToIncome + b.CreditUtilization + b.ExpenseDiscipline
}

// Momentum is the behavioral-momentum subtotal.
func (b Breakdown) Momentum() float64 {
	return b.Trend + b.Volatility
}

// Total is the unclamped score.
func (b Breakdown) Total() float64 {
	return b.Strength() + b.Momentum() + b.Deductions
}

// Score applies the rubric to in and its derived metrics.
func Score(in Input, m Metrics) (float64, Status, Breakdown) {
	b := Breakdown{
		CashRunway:        runwayPoints(m.CashRunwayMonths),
		SavingsRate:       savingsPoints(m.SavingsRate),
		DebtToIncome:      dtiPoints(m.DebtToIncomeRatio),
		CreditUtilization: utilizationPoints(m.CreditUtilization),
		ExpenseDiscipline: disciplinePoints(in.MonthlyIncome, in.MonthlyExpense),
		Trend:             trendPoints(in.Last3MonthsExpenses),
		Volatility:        volatilityPoints(in.Last3MonthsExpenses, m.MonthlyBurnRate),
		Deductions:        deductions(m),
	}

	score := clamp(b.Total(), 0, 100)
	return score, StatusFor(score), b
}

// StatusFor maps a score in [0,100] to its status band.
func StatusFor(score float64) Status {
	switch {
	case score >= ThresholdExcellent:
		return StatusExcellent
	case score >= ThresholdStable:
		return StatusStable
	case score >= ThresholdModerateRisk:
		return StatusModerateRisk
	case score >= ThresholdHighRisk:
		return StatusHighRisk
	default:
		return StatusCritical
	}
}

func runwayPoints(months float64) float64 {
	switch {
	case months > 6:
		return 15
	case months >= 3:
		return 10
	case months >= 1:
		return 5
	default:
		return 0
	}
}

func savingsPoints(rate float64) float64 {
	switch {
	case rate > 20:
		return 15
	case rate >= 10:
		return 10
	case rate >= 0:
		return 5
	default:
		return 0
	}
}

func dtiPoints(ratio float64) float64 {
	switch {
	case ratio < 15:
		return 15
	case ratio <= 30:
		return 10
	case ratio <= 43:
		return 5
	default:
		return 0
	}
}

func utilizationPoints(util float64) float64 {
	switch {
	case util < 10:
		return 15
	case util <= 30:
		return 10
	case util <= 60:
		return 5
	default:
		return 0
	}
}

// disciplinePoints scores expense as a share of income. No income and no
// spending counts as fully disciplined.
func disciplinePoints(income, expense float64) float64 {
	if income == 0 {
		if expense == 0 {
			return 10
		}
		return 0
	}

	ratio := expense / income * 100
	switch {
	case ratio < 60:
		return 10
	case ratio <= 80:
		return 7
	case ratio <= 95:
		return 3
	default:
		return 0
	}
}

// trendPoints compares the latest month with the one before it only.
func trendPoints(history []float64) float64 {
	if len(history) < 2 || history[1] <= 0 {
		return 7
	}

	current, previous := history[0], history[1]
	switch {
	case current < previous:
		return 15
	case math.Abs(current-previous) < 0.1*previous:
		return 7
	default:
		return 0
	}
}

func volatilityPoints(history []float64, burn float64) float64 {
	if burn <= minBurnRate {
		return 10
	}

	var sq float64
	for _, v := range history {
		d := v - burn
		sq += d * d
	}
	stdDev := math.Sqrt(sq / activeMonths(history))
	cv := stdDev / burn

	switch {
	case cv < 0.10:
		return 10
	case cv < 0.25:
		return 5
	default:
		return 0
	}
}

func deductions(m Metrics) float64 {
	var d float64
	if m.CreditUtilization > 80 {
		d -= riskPenalty
	}
	if m.SavingsRate < 0 {
		d -= riskPenalty
	}
	if m.CashRunwayMonths < 1 {
		d -= riskPenalty
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
