// Package service defines the contracts for the external collaborators the dialogue core depends on.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/celengan/internal/model"
)

// ErrCommitRejected marks a commit the collaborator refused permanently.
// Rejections are never retried.
var ErrCommitRejected = errors.New("commit rejected")

// Reason codes returned with commit receipts.
const (
	ReasonOK          = "ok"
	ReasonInvalid     = "invalid"
	ReasonUnavailable = "unavailable"
	ReasonDuplicate   = "duplicate"
)

// CommitService persists confirmed financial statements.
type CommitService interface {
	CreateIncome(ctx context.Context, record IncomeRecord) (CommitReceipt, error)
	CreateExpense(ctx context.Context, record ExpenseRecord) (CommitReceipt, error)
	CreateOrUpdateGoal(ctx context.Context, record GoalRecord) (CommitReceipt, error)
}

// AggregationService computes the financial snapshot for a user.
type AggregationService interface {
	GetFinancialSnapshot(ctx context.Context, userID string) (model.FinancialSnapshot, error)
}

// IncomeRecord is an income entry to be committed.
// RequestID is stable across retries so the collaborator can deduplicate.
type IncomeRecord struct {
	Date      time.Time
	RequestID string
	UserID    string
	Category  string
	Source    string
	Amount    int64
}

// ExpenseRecord is an expense entry to be committed.
type ExpenseRecord struct {
	Date      time.Time
	RequestID string
	UserID    string
	Category  string
	Item      string
	Amount    int64
}

// GoalRecord creates a savings goal, or updates the user's goal for the same item.
type GoalRecord struct {
	TargetDate   *time.Time
	RequestID    string
	UserID       string
	Item         string
	TargetAmount int64
}

// CommitReceipt describes the outcome of a commit call.
type CommitReceipt struct {
	ID         string
	ReasonCode string
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
