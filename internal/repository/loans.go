package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dan9191/payfirst/internal/models"
)

// CreateLoan stores a loan with its precomputed EMI
func (r *Repository) CreateLoan(ctx context.Context, loan *models.Loan) error {
	query := `
		INSERT INTO payfirst.loans
			(user_id, lender, principal, interest_rate, rate_type, term_months, emi, status, start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, loan.UserID, loan.Lender, loan.Principal, loan.InterestRate,
		loan.RateType, loan.TermMonths, loan.EMI, loan.Status, loan.StartDate).
		Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// ListLoans returns all loans of a user, active first
func (r *Repository) ListLoans(ctx context.Context, userID int64) ([]models.Loan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, lender, principal, interest_rate, rate_type, term_months, emi, status, start_date, created_at, updated_at
		FROM payfirst.loans
		WHERE user_id = $1
		ORDER BY status = 'closed', id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	loans := []models.Loan{}
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(&l.ID, &l.UserID, &l.Lender, &l.Principal, &l.InterestRate, &l.RateType,
			&l.TermMonths, &l.EMI, &l.Status, &l.StartDate, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// CloseLoan marks a user's loan as closed so its EMI no longer counts
func (r *Repository) CloseLoan(ctx context.Context, userID, loanID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payfirst.loans
		SET status = 'closed', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2`, loanID, userID)
	if err != nil {
		return fmt.Errorf("failed to close loan: %w", err)
	}
	return expectOneRow(res, fmt.Sprintf("loan %d", loanID))
}

// CreateDebt stores a personal debt
func (r *Repository) CreateDebt(ctx context.Context, debt *models.Debt) error {
	query := `
		INSERT INTO payfirst.debts (user_id, counterparty, amount, direction, settled, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, debt.UserID, debt.Counterparty, debt.Amount, debt.Direction, debt.DueDate).
		Scan(&debt.ID, &debt.CreatedAt, &debt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create debt: %w", err)
	}
	return nil
}

// ListDebts returns a user's personal debts, unsettled first
func (r *Repository) ListDebts(ctx context.Context, userID int64) ([]models.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, counterparty, amount, direction, settled, due_date, created_at, updated_at
		FROM payfirst.debts
		WHERE user_id = $1
		ORDER BY settled, due_date NULLS LAST, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		var d models.Debt
		var due sql.NullTime
		if err := rows.Scan(&d.ID, &d.UserID, &d.Counterparty, &d.Amount, &d.Direction, &d.Settled,
			&due, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		if due.Valid {
			d.DueDate = &due.Time
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// SettleDebt marks a user's debt as settled
func (r *Repository) SettleDebt(ctx context.Context, userID, debtID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payfirst.debts
		SET settled = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2`, debtID, userID)
	if err != nil {
		return fmt.Errorf("failed to settle debt: %w", err)
	}
	return expectOneRow(res, fmt.Sprintf("debt %d", debtID))
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
