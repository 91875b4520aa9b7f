package rules

import (
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// SummarizeDay totals the transactions dated inside day.
func SummarizeDay(txns []core.Transaction, day core.DateRange) core.DaySummary {
	s := core.DaySummary{Day: day}
	for _, t := range txns {
		if !day.Contains(t.Date) {
			continue
		}
		s.Transactions++
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	return s
}
