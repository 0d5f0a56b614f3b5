package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/payfirst/internal/health"
)

// healthWindow returns the start of the month two months before now, the
// previous month, the current month and the next month, all in UTC.
func healthWindow(now time.Time) (twoAgo, prev, current, next time.Time) {
	now = now.UTC()
	current = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return current.AddDate(0, -2, 0), current.AddDate(0, -1, 0), current, current.AddDate(0, 1, 0)
}

// Snapshot aggregates the user's records into a scoring input for the month containing now.
func (r *Repository) Snapshot(ctx context.Context, userID int64, now time.Time) (health.Input, error) {
	twoAgo, prev, current, next := healthWindow(now)

	var income, expense, expensePrev, expenseTwoAgo float64
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'  AND occurred_at >= $2), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND occurred_at >= $2), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND occurred_at >= $3 AND occurred_at < $2), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND occurred_at < $3), 0)
		FROM payfirst.transactions
		WHERE user_id = $1 AND occurred_at >= $4 AND occurred_at < $5`,
		userID, current, prev, twoAgo, next).
		Scan(&income, &expense, &expensePrev, &expenseTwoAgo)
	if err != nil {
		return health.Input{}, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	var liquid, emi, outstanding, limit float64
	err = r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(balance), 0) FROM payfirst.accounts WHERE user_id = $1 AND balance > 0),
			(SELECT COALESCE(SUM(emi), 0) FROM payfirst.loans WHERE user_id = $1 AND status = 'active'),
			(SELECT COALESCE(SUM(outstanding), 0) FROM payfirst.credit_cards WHERE user_id = $1),
			(SELECT COALESCE(SUM(credit_limit), 0) FROM payfirst.credit_cards WHERE user_id = $1)`,
		userID).Scan(&liquid, &emi, &outstanding, &limit)
	if err != nil {
		return health.Input{}, fmt.Errorf("failed to aggregate balances: %w", err)
	}

	return health.Input{
		MonthlyIncome:          income,
		MonthlyExpense:         expense,
		Last3MonthsExpenses:    []float64{expense, expensePrev, expenseTwoAgo},
		LiquidAssets:           liquid,
		TotalMonthlyEMI:        emi,
		TotalCreditOutstanding: outstanding,
		TotalCreditLimit:       limit,
	}, nil
}
