package models

import "time"

const (
	DebtBorrowed = "borrowed"
	DebtLent     = "lent"
)

// Debt is an informal debt between the user and another person
type Debt struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Counterparty string     `json:"counterparty"`
	Amount       float64    `json:"amount"`
	Direction    string     `json:"direction"`
	Settled      bool       `json:"settled"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
