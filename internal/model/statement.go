// Package model defines the core domain models used throughout the application.
package model

import "time"

// Intent is the coarse classification of an utterance.
type Intent string

// Intent constants.
const (
	IntentIncome       Intent = "income"
	IntentExpense      Intent = "expense"
	IntentSavingsGoal  Intent = "savings_goal"
	IntentQuery        Intent = "query"
	IntentNonFinancial Intent = "non_financial"
)

// Actionable reports whether statements with this intent can become a pending action.
func (i Intent) Actionable() bool {
	switch i {
	case IntentIncome, IntentExpense, IntentSavingsGoal:
		return true
	default:
		return false
	}
}

// ParseIntent converts a classifier label into an Intent.
func ParseIntent(label string) (Intent, bool) {
	switch Intent(label) {
	case IntentIncome, IntentExpense, IntentSavingsGoal, IntentQuery, IntentNonFinancial:
		return Intent(label), true
	default:
		return "", false
	}
}

// Statement is a financial statement extracted from one user message.
// Amount is in whole rupiah, the smallest unit the tracker records.
type Statement struct {
	TargetDate       *time.Time `json:"target_date,omitempty"`
	Intent           Intent     `json:"intent"`
	Category         string     `json:"category,omitempty"`
	Source           string     `json:"source,omitempty"`
	Item             string     `json:"item,omitempty"`
	Text             string     `json:"text,omitempty"`
	Amount           int64      `json:"amount"`
	IntentConfidence float64    `json:"intent_confidence"`
	AmountConfidence float64    `json:"amount_confidence"`
	LabelConfidence  float64    `json:"label_confidence"`
}

// Label returns the descriptive label that matters for the statement's intent:
// the source for income, the item for savings goals and the category otherwise.
func (s Statement) Label() string {
	switch s.Intent {
	case IntentIncome:
		if s.Source != "" {
			return s.Source
		}
	case IntentSavingsGoal:
		if s.Item != "" {
			return s.Item
		}
	}
	return s.Category
}
