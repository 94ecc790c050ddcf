package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/service"
)

// LedgerBuilder collects ledger fixtures for one user.
//
// Example:
//
//	db := testutil.SetupTestDB(t, clock).Seed(
//		testutil.NewLedger("u1", day).
//			Income("gaji", 3_000_000).
//			Expense("kos", 1_200_000).
//			Goal("laptop", 5_000_000),
//	)
type LedgerBuilder struct {
	date     time.Time
	userID   string
	incomes  []service.IncomeRecord
	expenses []service.ExpenseRecord
	goals    []service.GoalRecord
	seq      int
}

// NewLedger starts a builder whose entries are dated on date.
func NewLedger(userID string, date time.Time) *LedgerBuilder {
	return &LedgerBuilder{userID: userID, date: date}
}

func (b *LedgerBuilder) requestID() string {
	b.seq++
	return fmt.Sprintf("fixture-%s-%d", b.userID, b.seq)
}

// On changes the date of subsequent entries.
func (b *LedgerBuilder) On(date time.Time) *LedgerBuilder {
	b.date = date
	return b
}

// Income adds an income from source.
func (b *LedgerBuilder) Income(source string, amount int64) *LedgerBuilder {
	b.incomes = append(b.incomes, service.IncomeRecord{
		Date:      b.date,
		RequestID: b.requestID(),
		UserID:    b.userID,
		Source:    source,
		Amount:    amount,
	})
	return b
}

// Expense adds an expense in category.
func (b *LedgerBuilder) Expense(category string, amount int64) *LedgerBuilder {
	return b.ExpenseFor(category, "", amount)
}

// ExpenseFor adds an expense in category for item.
func (b *LedgerBuilder) ExpenseFor(category, item string, amount int64) *LedgerBuilder {
	b.expenses = append(b.expenses, service.ExpenseRecord{
		Date:      b.date,
		RequestID: b.requestID(),
		UserID:    b.userID,
		Category:  category,
		Item:      item,
		Amount:    amount,
	})
	return b
}

// Goal adds a savings goal for item.
func (b *LedgerBuilder) Goal(item string, target int64) *LedgerBuilder {
	b.goals = append(b.goals, service.GoalRecord{
		RequestID:    b.requestID(),
		UserID:       b.userID,
		Item:         item,
		TargetAmount: target,
	})
	return b
}

// Build commits the fixtures. Goals go first so savings expenses can
// count toward them.
func (b *LedgerBuilder) Build(ctx context.Context, commits service.CommitService) error {
	for _, g := range b.goals {
		if _, err := commits.CreateOrUpdateGoal(ctx, g); err != nil {
			return fmt.Errorf("failed to seed goal %q: %w", g.Item, err)
		}
	}
	for _, in := range b.incomes {
		if _, err := commits.CreateIncome(ctx, in); err != nil {
			return fmt.Errorf("failed to seed income %q: %w", in.Source, err)
		}
	}
	for _, ex := range b.expenses {
		if _, err := commits.CreateExpense(ctx, ex); err != nil {
			return fmt.Errorf("failed to seed expense %q: %w", ex.Category, err)
		}
	}
	return nil
}

// SnapshotView adds lookups to a snapshot for assertions.
type SnapshotView struct {
	model.FinancialSnapshot
}

// Goal returns the active goal for item.
func (v SnapshotView) Goal(item string) (model.Goal, bool) {
	for _, g := range v.ActiveGoals {
		if g.Item == item {
			return g, true
		}
	}
	return model.Goal{}, false
}
