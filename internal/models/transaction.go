package models

import "time"

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction represents a financial transaction against an account or a credit card.
// Exactly one of AccountID and CreditCardID is set.
type Transaction struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	AccountID    *int64    `json:"account_id,omitempty"`
	CreditCardID *int64    `json:"credit_card_id,omitempty"`
	Amount       float64   `json:"amount"`
	Type         string    `json:"type"`
	Category     string    `json:"category"`
	Note         string    `json:"note"`
	OccurredAt   time.Time `json:"occurred_at"`
	CreatedAt    time.Time `json:"created_at"`
}
