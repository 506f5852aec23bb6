package reports

import (
	"sort"
	"time"

	"github.com/findash/findash/internal/charts"
	"github.com/findash/findash/internal/domain"
)

// BudgetProgress is one budget line in a report.
type BudgetProgress struct {
	Category    string
	Spent       float64
	Total       float64
	PercentUsed float64
}

// Summary is the aggregate a report is written from.
type Summary struct {
	Frequency     domain.Frequency
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TotalIncome   float64
	TotalExpenses float64
	Net           float64
	TotalBalance  float64
	ByCategory    []charts.CategoryTotal
	Budgets       []BudgetProgress
}

// Summarize folds the period's rows into report figures. ByCategory covers
// expenses only and is sorted largest first.
func Summarize(freq domain.Frequency, start, end time.Time, transactions []domain.Transaction, accounts []domain.Account, budgets []domain.Budget) Summary {
	s := Summary{
		Frequency:   freq,
		PeriodStart: start,
		PeriodEnd:   end,
	}

	byCategory := make(map[string]float64)
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TypeIncome:
			s.TotalIncome += tx.Amount
		case domain.TypeExpense:
			s.TotalExpenses += tx.Amount
			byCategory[tx.Category] += tx.Amount
		}
	}
	s.Net = s.TotalIncome - s.TotalExpenses

	for _, acc := range accounts {
		s.TotalBalance += acc.Balance
	}

	for category, amount := range byCategory {
		s.ByCategory = append(s.ByCategory, charts.CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Amount > s.ByCategory[j].Amount
	})

	for i := range budgets {
		budget := &budgets[i]
		s.Budgets = append(s.Budgets, BudgetProgress{
			Category:    budget.Category,
			Spent:       budget.Spent,
			Total:       budget.Total,
			PercentUsed: budget.PercentUsed(),
		})
	}

	return s
}

// PeriodStart returns the beginning of the reporting window that ends at now.
func PeriodStart(freq domain.Frequency, now time.Time) time.Time {
	switch freq {
	case domain.FrequencyWeekly:
		return now.AddDate(0, 0, -7)
	case domain.FrequencyMonthly:
		return now.AddDate(0, -1, 0)
	case domain.FrequencyQuarterly:
		return now.AddDate(0, -3, 0)
	case domain.FrequencyHalfYearly:
		return now.AddDate(0, -6, 0)
	case domain.FrequencyYearly:
		return now.AddDate(-1, 0, 0)
	}
	return now.AddDate(0, -1, 0)
}

// DueFrequencies returns the report frequencies whose scheduled day is t.
// Weekly reports go out on Mondays; the longer cadences on the first of their
// anchor months.
func DueFrequencies(t time.Time) []domain.Frequency {
	var due []domain.Frequency

	if t.Weekday() == time.Monday {
		due = append(due, domain.FrequencyWeekly)
	}
	if t.Day() != 1 {
		return due
	}

	due = append(due, domain.FrequencyMonthly)
	switch t.Month() {
	case time.January:
		due = append(due, domain.FrequencyQuarterly, domain.FrequencyHalfYearly, domain.FrequencyYearly)
	case time.July:
		due = append(due, domain.FrequencyQuarterly, domain.FrequencyHalfYearly)
	case time.April, time.October:
		due = append(due, domain.FrequencyQuarterly)
	}
	return due
}
