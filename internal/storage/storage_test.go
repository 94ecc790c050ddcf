package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/service"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	s.SetClock(func() time.Time { return testNow })

	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// running again is a no-op
	require.NoError(t, s.Migrate(ctx))

	for _, table := range []string{"incomes", "expenses", "goals", "conversation_sessions"} {
		var name string
		err := s.DB().QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestNewSQLiteStorage_File(t *testing.T) {
	path := t.TempDir() + "/nested/ledger.db"

	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer func() {
		_ = s.Close()
	}()

	require.NoError(t, s.Migrate(context.Background()))
	assert.Equal(t, path, s.Path())

	_, err = NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestCreateIncome(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	record := service.IncomeRecord{
		Date:      testNow,
		RequestID: "req-1",
		UserID:    "u1",
		Source:    "freelance",
		Amount:    50_000,
	}

	receipt, err := s.CreateIncome(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, service.ReasonOK, receipt.ReasonCode)
	assert.NotEmpty(t, receipt.ID)

	again, err := s.CreateIncome(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, service.ReasonDuplicate, again.ReasonCode)
	assert.Equal(t, receipt.ID, again.ID)

	var count int
	require.NoError(t, s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM incomes`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCreate_Rejected(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	tests := []struct {
		commit func() (service.CommitReceipt, error)
		name   string
	}{
		{
			name: "zero income",
			commit: func() (service.CommitReceipt, error) {
				return s.CreateIncome(ctx, service.IncomeRecord{Date: testNow, RequestID: "r", UserID: "u1"})
			},
		},
		{
			name: "income without date",
			commit: func() (service.CommitReceipt, error) {
				return s.CreateIncome(ctx, service.IncomeRecord{RequestID: "r", UserID: "u1", Amount: 10})
			},
		},
		{
			name: "expense without category",
			commit: func() (service.CommitReceipt, error) {
				return s.CreateExpense(ctx, service.ExpenseRecord{Date: testNow, RequestID: "r", UserID: "u1", Amount: 10})
			},
		},
		{
			name: "negative expense",
			commit: func() (service.CommitReceipt, error) {
				return s.CreateExpense(ctx, service.ExpenseRecord{Date: testNow, RequestID: "r", UserID: "u1", Category: "kos", Amount: -5})
			},
		},
		{
			name: "goal without item",
			commit: func() (service.CommitReceipt, error) {
				return s.CreateOrUpdateGoal(ctx, service.GoalRecord{RequestID: "r", UserID: "u1", TargetAmount: 100})
			},
		},
		{
			name: "missing user",
			commit: func() (service.CommitReceipt, error) {
				return s.CreateOrUpdateGoal(ctx, service.GoalRecord{RequestID: "r", Item: "laptop", TargetAmount: 100})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, err := tt.commit()
			require.ErrorIs(t, err, service.ErrCommitRejected)
			assert.Equal(t, service.ReasonInvalid, receipt.ReasonCode)
			assert.False(t, common.IsRetryable(err))
		})
	}
}

func TestCreateOrUpdateGoal(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	december := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
	first, err := s.CreateOrUpdateGoal(ctx, service.GoalRecord{
		TargetDate:   &december,
		RequestID:    "g1",
		UserID:       "u1",
		Item:         "laptop",
		TargetAmount: 5_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, service.ReasonOK, first.ReasonCode)

	// a savings expense for the same item counts toward the goal
	_, err = s.CreateExpense(ctx, service.ExpenseRecord{
		Date:      testNow,
		RequestID: "e1",
		UserID:    "u1",
		Category:  "tabungan",
		Item:      "laptop",
		Amount:    1_000_000,
	})
	require.NoError(t, err)

	updated, err := s.CreateOrUpdateGoal(ctx, service.GoalRecord{
		RequestID:    "g2",
		UserID:       "u1",
		Item:         "laptop",
		TargetAmount: 8_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, service.ReasonOK, updated.ReasonCode)

	dup, err := s.CreateOrUpdateGoal(ctx, service.GoalRecord{
		RequestID:    "g2",
		UserID:       "u1",
		Item:         "laptop",
		TargetAmount: 8_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, service.ReasonDuplicate, dup.ReasonCode)

	snap, err := s.GetFinancialSnapshot(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snap.ActiveGoals, 1)
	goal := snap.ActiveGoals[0]
	assert.Equal(t, int64(8_000_000), goal.TargetAmount)
	assert.Equal(t, int64(1_000_000), goal.Saved)
	assert.Nil(t, goal.TargetDate)
	assert.InDelta(t, 12.5, goal.Progress(), 1e-9)
}

func TestGetFinancialSnapshot(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	lastMonth := time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	seq := 0
	next := func() string {
		seq++
		return fmt.Sprintf("req-%d", seq)
	}
	income := func(date time.Time, amount int64) {
		_, err := s.CreateIncome(ctx, service.IncomeRecord{Date: date, RequestID: next(), UserID: "u1", Source: "gaji", Amount: amount})
		require.NoError(t, err)
	}
	expense := func(date time.Time, category string, amount int64) {
		_, err := s.CreateExpense(ctx, service.ExpenseRecord{Date: date, RequestID: next(), UserID: "u1", Category: category, Amount: amount})
		require.NoError(t, err)
	}

	income(lastMonth, 1_000_000)
	expense(lastMonth, "kos", 900_000)
	income(thisMonth, 3_000_000)
	expense(thisMonth, "kos", 1_200_000)
	expense(thisMonth, "makan", 300_000)
	expense(thisMonth, "makan", 200_000)
	expense(thisMonth, "kopi", 100_000)
	expense(thisMonth, "jajan", 50_000)

	// another user's ledger stays separate
	_, err := s.CreateIncome(ctx, service.IncomeRecord{Date: thisMonth, RequestID: "other", UserID: "u2", Amount: 9_999})
	require.NoError(t, err)

	snap, err := s.GetFinancialSnapshot(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, testNow, snap.FetchedAt)
	assert.Equal(t, int64(4_000_000-2_750_000), snap.Balance)
	assert.Equal(t, int64(3_000_000), snap.MonthlyIncome)
	assert.Equal(t, int64(1_850_000), snap.MonthlyExpense)

	require.Len(t, snap.TopCategories, 3)
	assert.Equal(t, "kos", snap.TopCategories[0].Category)
	assert.Equal(t, int64(1_200_000), snap.TopCategories[0].Amount)
	assert.Equal(t, "makan", snap.TopCategories[1].Category)
	assert.Equal(t, int64(500_000), snap.TopCategories[1].Amount)
	assert.Equal(t, "kopi", snap.TopCategories[2].Category)
	assert.Empty(t, snap.ActiveGoals)

	empty, err := s.GetFinancialSnapshot(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.Balance)
	assert.Empty(t, empty.TopCategories)
}

func TestCanceledContext(t *testing.T) {
	s := setupTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateIncome(ctx, service.IncomeRecord{Date: testNow, RequestID: "r", UserID: "u1", Amount: 10})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.GetFinancialSnapshot(ctx, "u1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestWrapDBError(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		retryable bool
	}{
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, retryable: true},
		{name: "locked", err: sqlite3.Error{Code: sqlite3.ErrLocked}, retryable: true},
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, retryable: false},
		{name: "deadline", err: context.DeadlineExceeded, retryable: true},
		{name: "other", err: errors.New("disk on fire"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapDBError("record income", tt.err)
			assert.Equal(t, tt.retryable, common.IsRetryable(err))
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "failed to record income")
		})
	}
}
