package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/celengan/internal/model"
)

// topCategoryLimit is how many expense categories a snapshot lists.
const topCategoryLimit = 3

// GetFinancialSnapshot aggregates the user's ledger: all-time balance, this
// month's income and expense, the largest expense categories this month and
// active goals.
func (s *SQLiteStorage) GetFinancialSnapshot(ctx context.Context, userID string) (model.FinancialSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return model.FinancialSnapshot{}, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return model.FinancialSnapshot{}, err
	}

	now := s.now()
	start, end := monthBounds(now)
	from, to := formatDate(start), formatDate(end)

	snap := model.FinancialSnapshot{FetchedAt: now}

	var incomeTotal, expenseTotal int64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE user_id = ?),
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ?),
			(SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE user_id = ? AND date >= ? AND date < ?),
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ? AND date >= ? AND date < ?)`,
		userID, userID, userID, from, to, userID, from, to,
	).Scan(&incomeTotal, &expenseTotal, &snap.MonthlyIncome, &snap.MonthlyExpense)
	if err != nil {
		return model.FinancialSnapshot{}, wrapDBError("sum ledger", err)
	}
	snap.Balance = incomeTotal - expenseTotal

	if snap.TopCategories, err = s.topCategories(ctx, userID, from, to); err != nil {
		return model.FinancialSnapshot{}, err
	}
	if snap.ActiveGoals, err = s.activeGoals(ctx, userID); err != nil {
		return model.FinancialSnapshot{}, err
	}

	return snap, nil
}

func (s *SQLiteStorage) topCategories(ctx context.Context, userID, from, to string) ([]model.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount) AS total
		FROM expenses
		WHERE user_id = ? AND date >= ? AND date < ?
		GROUP BY category
		ORDER BY total DESC, category ASC
		LIMIT ?`,
		userID, from, to, topCategoryLimit)
	if err != nil {
		return nil, wrapDBError("query top categories", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var totals []model.CategoryTotal
	for rows.Next() {
		var c model.CategoryTotal
		if err := rows.Scan(&c.Category, &c.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterate top categories", err)
	}
	return totals, nil
}

func (s *SQLiteStorage) activeGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item, target_amount, saved, target_date
		FROM goals
		WHERE user_id = ? AND status = 'active'
		ORDER BY created_at ASC, item ASC`,
		userID)
	if err != nil {
		return nil, wrapDBError("query goals", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var goals []model.Goal
	for rows.Next() {
		var g model.Goal
		var targetDate sql.NullString
		if err := rows.Scan(&g.Item, &g.TargetAmount, &g.Saved, &targetDate); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if targetDate.Valid {
			t, err := time.Parse(dateLayout, targetDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse goal target date %q: %w", targetDate.String, err)
			}
			g.TargetDate = &t
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterate goals", err)
	}
	return goals, nil
}
