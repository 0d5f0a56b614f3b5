package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Dan9191/payfirst/internal/finance"
	"github.com/Dan9191/payfirst/internal/models"
	"github.com/Dan9191/payfirst/internal/utils"
)

const defaultCurrency = "RUB"

// AccountInput is the payload for a new account.
type AccountInput struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Currency      string  `json:"currency"`
	Balance       float64 `json:"balance"`
	AccountNumber string  `json:"account_number"`
}

// CreditCardInput is the payload for a new credit card.
type CreditCardInput struct {
	Name        string  `json:"name"`
	CreditLimit float64 `json:"credit_limit"`
	Outstanding float64 `json:"outstanding"`
}

// LoanInput is the payload for a new loan. A floating loan with a zero rate
// is priced at the central bank key rate plus the configured margin.
type LoanInput struct {
	Lender       string     `json:"lender"`
	Principal    float64    `json:"principal"`
	InterestRate float64    `json:"interest_rate"`
	RateType     string     `json:"rate_type"`
	TermMonths   int        `json:"term_months"`
	StartDate    *time.Time `json:"start_date"`
}

// DebtInput is the payload for a new personal debt.
type DebtInput struct {
	Counterparty string     `json:"counterparty"`
	Amount       float64    `json:"amount"`
	Direction    string     `json:"direction"`
	DueDate      *time.Time `json:"due_date"`
}

// TransactionInput is the payload for a new transaction.
type TransactionInput struct {
	AccountID    *int64     `json:"account_id"`
	CreditCardID *int64     `json:"credit_card_id"`
	Amount       float64    `json:"amount"`
	Type         string     `json:"type"`
	Category     string     `json:"category"`
	Note         string     `json:"note"`
	OccurredAt   *time.Time `json:"occurred_at"`
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// CreateAccount creates a new account for the user
func (s *Service) CreateAccount(ctx context.Context, userID int64, in AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if !models.ValidAccountType(in.Type) {
		return nil, validationError("unknown account type %q", in.Type)
	}
	if !validAmount(in.Balance) {
		return nil, validationError("balance must be a non-negative number")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	account := &models.Account{
		UserID:   userID,
		Name:     name,
		Type:     in.Type,
		Balance:  finance.Round2(in.Balance),
		Currency: currency,
	}

	number := strings.ReplaceAll(in.AccountNumber, " ", "")
	if number != "" {
		enc, err := utils.Encrypt(number, s.encKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt account number: %w", err)
		}
		account.AccountNumber = enc
		account.NumberHMAC = utils.Fingerprint(number, s.config.HMACSecret)
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	account.AccountNumber = utils.MaskAccountNumber(number)
	s.log.Infof("Account created for user %d: %s (%s)", userID, account.Name, account.Type)
	return account, nil
}

// ListAccounts returns the user's accounts with masked account numbers
func (s *Service) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].AccountNumber = s.revealMasked(&accounts[i])
	}
	return accounts, nil
}

func (s *Service) revealMasked(a *models.Account) string {
	if a.AccountNumber == "" {
		return ""
	}
	number, err := utils.Decrypt(a.AccountNumber, s.encKey)
	if err != nil {
		s.log.Warnf("Failed to decrypt account number for account %d: %v", a.ID, err)
		return ""
	}
	if !utils.VerifyFingerprint(number, a.NumberHMAC, s.config.HMACSecret) {
		s.log.Warnf("Account number fingerprint mismatch for account %d", a.ID)
		return ""
	}
	return utils.MaskAccountNumber(number)
}

// CreateCreditCard registers a credit card
func (s *Service) CreateCreditCard(ctx context.Context, userID int64, in CreditCardInput) (*models.CreditCard, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if !validAmount(in.CreditLimit) || !validAmount(in.Outstanding) {
		return nil, validationError("credit limit and outstanding must be non-negative numbers")
	}

	card := &models.CreditCard{
		UserID:      userID,
		Name:        name,
		CreditLimit: finance.Round2(in.CreditLimit),
		Outstanding: finance.Round2(in.Outstanding),
	}
	if err := s.repo.CreateCreditCard(ctx, card); err != nil {
		return nil, err
	}

	s.log.Infof("Credit card created for user %d: %s", userID, card.Name)
	return card, nil
}

// ListCreditCards returns the user's credit cards
func (s *Service) ListCreditCards(ctx context.Context, userID int64) ([]models.CreditCard, error) {
	return s.repo.ListCreditCards(ctx, userID)
}

// CreateLoan prices a loan, computes its EMI and stores it
func (s *Service) CreateLoan(ctx context.Context, userID int64, in LoanInput) (*models.Loan, error) {
	lender := strings.TrimSpace(in.Lender)
	if lender == "" {
		return nil, validationError("lender is required")
	}
	rateType := in.RateType
	if rateType == "" {
		rateType = models.RateTypeFixed
	}
	if rateType != models.RateTypeFixed && rateType != models.RateTypeFloating {
		return nil, validationError("unknown rate type %q", in.RateType)
	}
	if !validAmount(in.InterestRate) {
		return nil, validationError("interest rate must be a non-negative number")
	}

	rate := in.InterestRate
	if rateType == models.RateTypeFloating && rate == 0 {
		if s.keyRate == nil {
			return nil, fmt.Errorf("key rate source is not configured")
		}
		keyRate, err := s.keyRate.GetKeyRate(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to price floating loan: %w", err)
		}
		rate = keyRate + s.config.LoanMargin
	}

	emi, err := finance.MonthlyInstallment(in.Principal, rate, in.TermMonths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	start := s.now().UTC()
	if in.StartDate != nil {
		start = in.StartDate.UTC()
	}

	loan := &models.Loan{
		UserID:       userID,
		Lender:       lender,
		Principal:    finance.Round2(in.Principal),
		InterestRate: rate,
		RateType:     rateType,
		TermMonths:   in.TermMonths,
		EMI:          emi,
		Status:       models.LoanStatusActive,
		StartDate:    start,
	}
	if err := s.repo.CreateLoan(ctx, loan); err != nil {
		return nil, err
	}

	s.log.Infof("Loan created for user %d: %.2f at %.2f%% over %d months, EMI %.2f",
		userID, loan.Principal, loan.InterestRate, loan.TermMonths, loan.EMI)
	return loan, nil
}

// ListLoans returns the user's loans
func (s *Service) ListLoans(ctx context.Context, userID int64) ([]models.Loan, error) {
	return s.repo.ListLoans(ctx, userID)
}

// CloseLoan marks a loan as repaid
func (s *Service) CloseLoan(ctx context.Context, userID, loanID int64) error {
	if err := s.repo.CloseLoan(ctx, userID, loanID); err != nil {
		return err
	}
	s.log.Infof("Loan %d closed for user %d", loanID, userID)
	return nil
}

// CreateDebt records a personal debt
func (s *Service) CreateDebt(ctx context.Context, userID int64, in DebtInput) (*models.Debt, error) {
	counterparty := strings.TrimSpace(in.Counterparty)
	if counterparty == "" {
		return nil, validationError("counterparty is required")
	}
	if !validAmount(in.Amount) || in.Amount == 0 {
		return nil, validationError("amount must be positive")
	}
	if in.Direction != models.DebtBorrowed && in.Direction != models.DebtLent {
		return nil, validationError("direction must be %q or %q", models.DebtBorrowed, models.DebtLent)
	}

	debt := &models.Debt{
		UserID:       userID,
		Counterparty: counterparty,
		Amount:       finance.Round2(in.Amount),
		Direction:    in.Direction,
		DueDate:      in.DueDate,
	}
	if err := s.repo.CreateDebt(ctx, debt); err != nil {
		return nil, err
	}

	s.log.Infof("Debt created for user %d: %s %.2f", userID, debt.Direction, debt.Amount)
	return debt, nil
}

// ListDebts returns the user's personal debts
func (s *Service) ListDebts(ctx context.Context, userID int64) ([]models.Debt, error) {
	return s.repo.ListDebts(ctx, userID)
}

// SettleDebt marks a personal debt as settled
func (s *Service) SettleDebt(ctx context.Context, userID, debtID int64) error {
	if err := s.repo.SettleDebt(ctx, userID, debtID); err != nil {
		return err
	}
	s.log.Infof("Debt %d settled for user %d", debtID, userID)
	return nil
}

// CreateTransaction validates and records a transaction, updating the balance it touches
func (s *Service) CreateTransaction(ctx context.Context, userID int64, in TransactionInput) (*models.Transaction, error) {
	if (in.AccountID == nil) == (in.CreditCardID == nil) {
		return nil, validationError("exactly one of account_id and credit_card_id is required")
	}
	if in.Type != models.TransactionIncome && in.Type != models.TransactionExpense {
		return nil, validationError("type must be %q or %q", models.TransactionIncome, models.TransactionExpense)
	}
	if !validAmount(in.Amount) || in.Amount == 0 {
		return nil, validationError("amount must be positive")
	}

	occurred := s.now().UTC()
	if in.OccurredAt != nil {
		occurred = in.OccurredAt.UTC()
	}

	t := &models.Transaction{
		UserID:       userID,
		AccountID:    in.AccountID,
		CreditCardID: in.CreditCardID,
		Amount:       finance.Round2(in.Amount),
		Type:         in.Type,
		Category:     strings.TrimSpace(in.Category),
		Note:         strings.TrimSpace(in.Note),
		OccurredAt:   occurred,
	}
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	s.log.Debugf("Transaction %d recorded for user %d: %s %.2f", t.ID, userID, t.Type, t.Amount)
	return t, nil
}

// ListTransactions returns transactions in [from, to). Zero bounds default to the current month.
func (s *Service) ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error) {
	if from.IsZero() {
		now := s.now().UTC()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = from.AddDate(0, 1, 0)
	}
	if !to.After(from) {
		return nil, validationError("to must be after from")
	}
	return s.repo.ListTransactions(ctx, userID, from, to)
}
