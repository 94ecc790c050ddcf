package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/celengan/internal/service"
)

// Validation errors. Record validation failures are reported wrapped in
// service.ErrCommitRejected.
var (
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidRecord = errors.New("invalid record")
	ErrNilContext    = errors.New("context cannot be nil")
)

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func rejected(err error) error {
	return fmt.Errorf("%w: %w", service.ErrCommitRejected, err)
}

func validateIncome(r service.IncomeRecord) error {
	if err := validateString(r.RequestID, "request ID"); err != nil {
		return rejected(err)
	}
	if err := validateString(r.UserID, "user ID"); err != nil {
		return rejected(err)
	}
	if r.Amount <= 0 {
		return rejected(fmt.Errorf("%w: got %d", ErrInvalidAmount, r.Amount))
	}
	if r.Date.IsZero() {
		return rejected(fmt.Errorf("%w: missing date", ErrInvalidRecord))
	}
	return nil
}

func validateExpense(r service.ExpenseRecord) error {
	if err := validateString(r.RequestID, "request ID"); err != nil {
		return rejected(err)
	}
	if err := validateString(r.UserID, "user ID"); err != nil {
		return rejected(err)
	}
	if err := validateString(r.Category, "category"); err != nil {
		return rejected(err)
	}
	if r.Amount <= 0 {
		return rejected(fmt.Errorf("%w: got %d", ErrInvalidAmount, r.Amount))
	}
	if r.Date.IsZero() {
		return rejected(fmt.Errorf("%w: missing date", ErrInvalidRecord))
	}
	return nil
}

func validateGoal(r service.GoalRecord) error {
	if err := validateString(r.RequestID, "request ID"); err != nil {
		return rejected(err)
	}
	if err := validateString(r.UserID, "user ID"); err != nil {
		return rejected(err)
	}
	if err := validateString(r.Item, "item"); err != nil {
		return rejected(err)
	}
	if r.TargetAmount <= 0 {
		return rejected(fmt.Errorf("%w: got %d", ErrInvalidAmount, r.TargetAmount))
	}
	return nil
}
