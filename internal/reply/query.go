package reply

import (
	"fmt"
	"strings"

	"github.com/Veraticus/celengan/internal/model"
)

// Savings rate bands for the health summary, in percent.
const (
	healthySavingsRate = 20.0
	fairSavingsRate    = 0.0
)

func (t text) query(q QueryAnswer) string {
	if q.Snapshot == nil {
		return t.pick(
			"Maaf, data keuanganmu belum bisa diambil sekarang. Coba lagi sebentar lagi.",
			"Sorry, I can't reach your financial data right now. Please try again shortly.")
	}
	s := *q.Snapshot

	switch q.Topic {
	case TopicBalance:
		return t.pick(
			fmt.Sprintf("Saldo kamu sekarang %s.", t.amount(s.Balance)),
			fmt.Sprintf("Your balance is %s.", t.amount(s.Balance)))
	case TopicIncome:
		return t.pick(
			fmt.Sprintf("Pemasukan kamu bulan ini %s.", t.amount(s.MonthlyIncome)),
			fmt.Sprintf("Your income this month is %s.", t.amount(s.MonthlyIncome)))
	case TopicExpense:
		return t.expense(s)
	case TopicTopCategory:
		return t.topCategory(s)
	case TopicGoals:
		return t.goals(s)
	case TopicHealth:
		return t.health(s)
	default:
		return t.pick(
			fmt.Sprintf("Saldo %s. Bulan ini pemasukan %s dan pengeluaran %s.",
				t.amount(s.Balance), t.amount(s.MonthlyIncome), t.amount(s.MonthlyExpense)),
			fmt.Sprintf("Balance %s. This month you earned %s and spent %s.",
				t.amount(s.Balance), t.amount(s.MonthlyIncome), t.amount(s.MonthlyExpense)))
	}
}

func (t text) expense(s model.FinancialSnapshot) string {
	out := t.pick(
		fmt.Sprintf("Pengeluaran kamu bulan ini %s.", t.amount(s.MonthlyExpense)),
		fmt.Sprintf("You've spent %s this month.", t.amount(s.MonthlyExpense)))
	if len(s.TopCategories) > 0 {
		out += " " + t.topCategory(s)
	}
	return out
}

func (t text) topCategory(s model.FinancialSnapshot) string {
	if len(s.TopCategories) == 0 {
		return t.pick("Belum ada pengeluaran bulan ini.", "No expenses recorded this month.")
	}
	top := s.TopCategories[0]
	return t.pick(
		fmt.Sprintf("Paling banyak untuk %s: %s (%s dari pengeluaran).", top.Category, t.amount(top.Amount), FormatPercent(s.CategoryShare(top))),
		fmt.Sprintf("Most of it went to %s: %s (%s of spending).", top.Category, t.amount(top.Amount), FormatPercent(s.CategoryShare(top))))
}

func (t text) goals(s model.FinancialSnapshot) string {
	if len(s.ActiveGoals) == 0 {
		return t.pick(
			"Kamu belum punya target tabungan. Coba \"mau nabung 5 juta buat laptop\".",
			"You don't have a savings goal yet. Try \"mau nabung 5 juta buat laptop\".")
	}
	parts := make([]string, 0, len(s.ActiveGoals))
	for _, g := range s.ActiveGoals {
		parts = append(parts, t.goal(g))
	}
	return t.pick("Target tabungan: ", "Savings goals: ") + strings.Join(parts, "; ") + "."
}

func (t text) goal(g model.Goal) string {
	line := t.pick(
		fmt.Sprintf("%s %s dari %s (%s)", g.Item, t.amount(g.Saved), t.amount(g.TargetAmount), FormatPercent(g.Progress())),
		fmt.Sprintf("%s %s of %s (%s)", g.Item, t.amount(g.Saved), t.amount(g.TargetAmount), FormatPercent(g.Progress())))
	if g.TargetDate != nil {
		line += t.pick(", sampai ", ", by ") + FormatDate(t.lang, *g.TargetDate)
	}
	return line
}

func (t text) health(s model.FinancialSnapshot) string {
	var b strings.Builder

	rate, ok := s.SavingsRate()
	switch {
	case !ok:
		b.WriteString(t.pick(
			"Belum ada pemasukan bulan ini, jadi tingkat tabunganmu belum bisa dihitung.",
			"There's no income this month yet, so your savings rate can't be computed."))
	case rate >= healthySavingsRate:
		b.WriteString(t.pick(
			fmt.Sprintf("Keuanganmu sehat: kamu menyisihkan %s dari pemasukan bulan ini.", FormatPercent(rate)),
			fmt.Sprintf("Your finances look healthy: you kept %s of this month's income.", FormatPercent(rate))))
	case rate >= fairSavingsRate:
		b.WriteString(t.pick(
			fmt.Sprintf("Keuanganmu cukup: baru %s pemasukan yang tersisa bulan ini. Coba sisihkan minimal 20%%.", FormatPercent(rate)),
			fmt.Sprintf("Your finances are okay: only %s of this month's income is left. Aim for at least 20%%.", FormatPercent(rate))))
	default:
		b.WriteString(t.pick(
			fmt.Sprintf("Hati-hati, pengeluaranmu bulan ini melebihi pemasukan sebesar %s.", t.amount(s.MonthlyExpense-s.MonthlyIncome)),
			fmt.Sprintf("Careful, you've spent %s more than you earned this month.", t.amount(s.MonthlyExpense-s.MonthlyIncome))))
	}

	if len(s.TopCategories) > 0 {
		b.WriteString(" " + t.topCategory(s))
	}
	if len(s.ActiveGoals) > 0 {
		b.WriteString(" " + t.goals(s))
	}
	return b.String()
}
