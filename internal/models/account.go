package models

import "time"

// Account types counted as liquid assets.
const (
	AccountTypeBank   = "bank"
	AccountTypeCash   = "cash"
	AccountTypeWallet = "wallet"
)

// Account is a cash-like balance: a bank account, a wallet or cash in hand.
type Account struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
	// AccountNumber holds ciphertext in storage and the masked number in responses.
	AccountNumber string    `json:"account_number,omitempty"`
	NumberHMAC    string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ValidAccountType reports whether t is a known account type.
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeBank, AccountTypeCash, AccountTypeWallet:
		return true
	}
	return false
}
