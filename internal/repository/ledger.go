package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dan9191/payfirst/internal/finance"
	"github.com/Dan9191/payfirst/internal/models"
)

// CreateTransaction records a transaction and applies it to the account balance
// or card outstanding in the same database transaction. The target row is
// locked with SELECT ... FOR UPDATE and must belong to the transaction's user.
func (r *Repository) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch {
	case t.AccountID != nil:
		if err := applyToAccount(ctx, tx, t); err != nil {
			return err
		}
	case t.CreditCardID != nil:
		if err := applyToCard(ctx, tx, t); err != nil {
			return err
		}
	default:
		return fmt.Errorf("transaction has no account or credit card")
	}

	query := `
		INSERT INTO payfirst.transactions
			(user_id, account_id, credit_card_id, amount, type, category, note, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query, t.UserID, t.AccountID, t.CreditCardID, t.Amount, t.Type,
		t.Category, t.Note, t.OccurredAt).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func applyToAccount(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	var balance float64
	err := tx.QueryRowContext(ctx, `
		SELECT balance FROM payfirst.accounts
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`, *t.AccountID, t.UserID).Scan(&balance)
	if err == sql.ErrNoRows {
		return fmt.Errorf("account %d: %w", *t.AccountID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payfirst.accounts
		SET balance = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`, accountBalanceAfter(balance, t.Amount, t.Type), *t.AccountID)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	return nil
}

func applyToCard(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	var outstanding float64
	err := tx.QueryRowContext(ctx, `
		SELECT outstanding FROM payfirst.credit_cards
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`, *t.CreditCardID, t.UserID).Scan(&outstanding)
	if err == sql.ErrNoRows {
		return fmt.Errorf("credit card %d: %w", *t.CreditCardID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock credit card: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payfirst.credit_cards
		SET outstanding = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`, cardOutstandingAfter(outstanding, t.Amount, t.Type), *t.CreditCardID)
	if err != nil {
		return fmt.Errorf("failed to update card outstanding: %w", err)
	}
	return nil
}

// accountBalanceAfter adds income and subtracts expense. Balances may go negative (overdraft).
func accountBalanceAfter(balance, amount float64, txType string) float64 {
	if txType == models.TransactionExpense {
		amount = -amount
	}
	return finance.Sum(balance, amount)
}

// cardOutstandingAfter treats expense as a purchase and income as a repayment.
// Outstanding never drops below zero.
func cardOutstandingAfter(outstanding, amount float64, txType string) float64 {
	if txType == models.TransactionExpense {
		return finance.Sum(outstanding, amount)
	}
	left := finance.Sum(outstanding, -amount)
	if left < 0 {
		return 0
	}
	return left
}

// ListTransactions returns a user's transactions in [from, to), newest first
func (r *Repository) ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, credit_card_id, amount, type, category, note, occurred_at, created_at
		FROM payfirst.transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at DESC, id DESC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		var accountID, cardID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.UserID, &accountID, &cardID, &t.Amount, &t.Type,
			&t.Category, &t.Note, &t.OccurredAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if accountID.Valid {
			t.AccountID = &accountID.Int64
		}
		if cardID.Valid {
			t.CreditCardID = &cardID.Int64
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
