package model

import "time"

// CategoryTotal is the amount spent in one category over a period.
type CategoryTotal struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

// Goal is an active savings goal.
type Goal struct {
	TargetDate   *time.Time `json:"target_date,omitempty"`
	Item         string     `json:"item"`
	TargetAmount int64      `json:"target_amount"`
	Saved        int64      `json:"saved"`
}

// Progress returns how much of the target has been saved, in percent, capped at 100.
func (g Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := float64(g.Saved) / float64(g.TargetAmount) * 100
	if p > 100 {
		return 100
	}
	return p
}

// FinancialSnapshot is the cached aggregate used to ground replies.
type FinancialSnapshot struct {
	FetchedAt      time.Time       `json:"fetched_at"`
	TopCategories  []CategoryTotal `json:"top_categories"`
	ActiveGoals    []Goal          `json:"active_goals"`
	Balance        int64           `json:"balance"`
	MonthlyIncome  int64           `json:"monthly_income"`
	MonthlyExpense int64           `json:"monthly_expense"`
}

// SavingsRate returns the share of this month's income not spent, in percent.
// The second value is false when there is no income to compare against.
func (s FinancialSnapshot) SavingsRate() (float64, bool) {
	if s.MonthlyIncome <= 0 {
		return 0, false
	}
	return float64(s.MonthlyIncome-s.MonthlyExpense) / float64(s.MonthlyIncome) * 100, true
}

// CategoryShare returns the share of monthly expense spent in c, in percent.
func (s FinancialSnapshot) CategoryShare(c CategoryTotal) float64 {
	if s.MonthlyExpense <= 0 {
		return 0
	}
	return float64(c.Amount) / float64(s.MonthlyExpense) * 100
}
