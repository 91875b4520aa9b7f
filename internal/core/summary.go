package core

import "github.com/shopspring/decimal"

// BudgetStatus is a budget together with its derived state.
type BudgetStatus struct {
	Budget      Budget
	Utilization decimal.Decimal // percent
	Triggered   bool
}

// DaySummary totals one day of transactions.
type DaySummary struct {
	Day          DateRange
	Income       Money
	Expense      Money
	Transactions int
}

// Net is income minus expense, in cents; it may be negative.
func (s DaySummary) Net() int64 {
	return s.Income.Cents - s.Expense.Cents
}
