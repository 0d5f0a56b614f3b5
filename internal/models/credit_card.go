package models

import "time"

// CreditCard represents a revolving credit line
type CreditCard struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	CreditLimit float64   `json:"credit_limit"`
	Outstanding float64   `json:"outstanding"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
