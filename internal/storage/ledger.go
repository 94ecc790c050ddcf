package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/celengan/internal/service"
	"github.com/google/uuid"
)

// savingsCategories are expense categories that move money into a goal.
var savingsCategories = map[string]bool{
	"tabungan":     true,
	"investasi":    true,
	"dana darurat": true,
}

// CreateIncome records an income. A repeated request ID returns the original
// entry with ReasonDuplicate instead of writing twice.
func (s *SQLiteStorage) CreateIncome(ctx context.Context, record service.IncomeRecord) (service.CommitReceipt, error) {
	if err := validateContext(ctx); err != nil {
		return service.CommitReceipt{}, err
	}
	if err := validateIncome(record); err != nil {
		return service.CommitReceipt{ReasonCode: service.ReasonInvalid}, err
	}

	var receipt service.CommitReceipt
	err := s.inTx(ctx, "record income", func(tx *sql.Tx) error {
		if id, found, err := existingByRequest(ctx, tx, "incomes", record.RequestID); err != nil || found {
			receipt = service.CommitReceipt{ID: id, ReasonCode: service.ReasonDuplicate}
			return err
		}

		id := uuid.NewString()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO incomes (id, request_id, user_id, amount, category, source, date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, record.RequestID, record.UserID, record.Amount,
			nullString(record.Category), nullString(record.Source), formatDate(record.Date))
		if err != nil {
			return err
		}
		receipt = service.CommitReceipt{ID: id, ReasonCode: service.ReasonOK}
		return nil
	})
	if err != nil {
		return service.CommitReceipt{ReasonCode: service.ReasonUnavailable}, err
	}

	slog.Debug("Recorded income",
		"user_id", record.UserID,
		"amount", record.Amount,
		"reason", receipt.ReasonCode)
	return receipt, nil
}

// CreateExpense records an expense. Savings categories with an item that
// names one of the user's active goals also add the amount to that goal.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, record service.ExpenseRecord) (service.CommitReceipt, error) {
	if err := validateContext(ctx); err != nil {
		return service.CommitReceipt{}, err
	}
	if err := validateExpense(record); err != nil {
		return service.CommitReceipt{ReasonCode: service.ReasonInvalid}, err
	}

	var receipt service.CommitReceipt
	err := s.inTx(ctx, "record expense", func(tx *sql.Tx) error {
		if id, found, err := existingByRequest(ctx, tx, "expenses", record.RequestID); err != nil || found {
			receipt = service.CommitReceipt{ID: id, ReasonCode: service.ReasonDuplicate}
			return err
		}

		id := uuid.NewString()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (id, request_id, user_id, amount, category, item, date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, record.RequestID, record.UserID, record.Amount,
			record.Category, nullString(record.Item), formatDate(record.Date))
		if err != nil {
			return err
		}

		if savingsCategories[record.Category] && record.Item != "" {
			if _, err := tx.ExecContext(ctx, `
				UPDATE goals SET saved = saved + ?
				WHERE user_id = ? AND item = ? AND status = 'active'`,
				record.Amount, record.UserID, record.Item); err != nil {
				return err
			}
		}

		receipt = service.CommitReceipt{ID: id, ReasonCode: service.ReasonOK}
		return nil
	})
	if err != nil {
		return service.CommitReceipt{ReasonCode: service.ReasonUnavailable}, err
	}

	slog.Debug("Recorded expense",
		"user_id", record.UserID,
		"category", record.Category,
		"amount", record.Amount,
		"reason", receipt.ReasonCode)
	return receipt, nil
}

// CreateOrUpdateGoal creates the user's goal for an item, or replaces the
// target of the existing one. Progress already saved is kept.
func (s *SQLiteStorage) CreateOrUpdateGoal(ctx context.Context, record service.GoalRecord) (service.CommitReceipt, error) {
	if err := validateContext(ctx); err != nil {
		return service.CommitReceipt{}, err
	}
	if err := validateGoal(record); err != nil {
		return service.CommitReceipt{ReasonCode: service.ReasonInvalid}, err
	}

	var targetDate sql.NullString
	if record.TargetDate != nil {
		targetDate = sql.NullString{String: formatDate(*record.TargetDate), Valid: true}
	}

	var receipt service.CommitReceipt
	err := s.inTx(ctx, "save goal", func(tx *sql.Tx) error {
		var id, lastRequest string
		err := tx.QueryRowContext(ctx,
			`SELECT id, last_request_id FROM goals WHERE user_id = ? AND item = ?`,
			record.UserID, record.Item).Scan(&id, &lastRequest)
		switch {
		case err == nil && lastRequest == record.RequestID:
			receipt = service.CommitReceipt{ID: id, ReasonCode: service.ReasonDuplicate}
			return nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return err
		case errors.Is(err, sql.ErrNoRows):
			id = uuid.NewString()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO goals (id, last_request_id, user_id, item, target_amount, target_date)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, item) DO UPDATE SET
				last_request_id = excluded.last_request_id,
				target_amount = excluded.target_amount,
				target_date = excluded.target_date,
				status = 'active'`,
			id, record.RequestID, record.UserID, record.Item, record.TargetAmount, targetDate)
		if err != nil {
			return err
		}
		receipt = service.CommitReceipt{ID: id, ReasonCode: service.ReasonOK}
		return nil
	})
	if err != nil {
		return service.CommitReceipt{ReasonCode: service.ReasonUnavailable}, err
	}

	slog.Debug("Saved goal",
		"user_id", record.UserID,
		"item", record.Item,
		"target", record.TargetAmount,
		"reason", receipt.ReasonCode)
	return receipt, nil
}

func (s *SQLiteStorage) inTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return wrapDBError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return wrapDBError("commit "+op, err)
	}
	return nil
}

// existingByRequest looks up an entry by request ID. table is one of the
// ledger tables, never user input.
func existingByRequest(ctx context.Context, tx *sql.Tx, table, requestID string) (string, bool, error) {
	var id string
	query := fmt.Sprintf(`SELECT id FROM %s WHERE request_id = ?`, table) //nolint:gosec // table is a constant
	err := tx.QueryRowContext(ctx, query, requestID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return ctx.Err()
}
