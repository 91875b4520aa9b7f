package rules

import (
	"github.com/shopspring/decimal"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

var hundred = decimal.NewFromInt(100)

// BudgetUtilization returns spent as a percentage of the budget amount.
func BudgetUtilization(b core.Budget) (decimal.Decimal, error) {
	if b.Amount.Cents == 0 {
		return decimal.Zero, &core.ComputationError{Op: "budget utilization", Err: core.ErrDivisionByZero}
	}
	return decimal.NewFromInt(b.Spent.Cents).Mul(hundred).Div(decimal.NewFromInt(b.Amount.Cents)), nil
}

// IsBudgetAlertTriggered reports whether utilization has reached the alert
// threshold. The comparison is done on integer cents, so 80.00 % against a
// threshold of 80 triggers exactly.
func IsBudgetAlertTriggered(b core.Budget) (bool, error) {
	if b.Amount.Cents == 0 {
		return false, &core.ComputationError{Op: "budget alert", Err: core.ErrDivisionByZero}
	}
	return b.Spent.Cents*100 >= int64(b.AlertThreshold)*b.Amount.Cents, nil
}

// BudgetAlertCrossed reports a transition from not triggered to triggered.
// A budget that was already over its threshold does not alert again.
func BudgetAlertCrossed(before, after core.Budget) (bool, error) {
	was, err := IsBudgetAlertTriggered(before)
	if err != nil {
		return false, err
	}
	is, err := IsBudgetAlertTriggered(after)
	if err != nil {
		return false, err
	}
	return is && !was, nil
}

// Counts reports whether t contributes to b's spending inside window:
// an expense of the budget's category dated inside the window. Ownership
// is checked by the caller before the transaction reaches a budget.
func Counts(b core.Budget, t core.Transaction, window core.DateRange) bool {
	return t.Type == core.Expense &&
		t.CategoryID == b.CategoryID &&
		window.Contains(t.Date)
}

// AccumulateSpent returns b's spent amount after t, or the unchanged amount
// when t does not count toward the budget.
func AccumulateSpent(b core.Budget, t core.Transaction, window core.DateRange) core.Money {
	if !Counts(b, t, window) {
		return b.Spent
	}
	return b.Spent.Add(t.Amount)
}

// Status combines a budget with its utilization and alert state.
func Status(b core.Budget) (core.BudgetStatus, error) {
	u, err := BudgetUtilization(b)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	triggered, err := IsBudgetAlertTriggered(b)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	return core.BudgetStatus{Budget: b, Utilization: u, Triggered: triggered}, nil
}
