package models

import "time"

const (
	RateTypeFixed    = "fixed"
	RateTypeFloating = "floating"

	LoanStatusActive = "active"
	LoanStatusClosed = "closed"
)

// Loan represents an installment loan. EMI is derived from principal, rate and term.
type Loan struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Lender       string    `json:"lender"`
	Principal    float64   `json:"principal"`
	InterestRate float64   `json:"interest_rate"`
	RateType     string    `json:"rate_type"`
	TermMonths   int       `json:"term_months"`
	EMI          float64   `json:"emi"`
	Status       string    `json:"status"`
	StartDate    time.Time `json:"start_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
