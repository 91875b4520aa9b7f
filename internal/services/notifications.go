package services

import (
	"fmt"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/rules"
)

func (s *LedgerService) budgetAlert(b core.Budget, c core.Category, t core.Transaction, currency string, now time.Time) (core.Notification, error) {
	util, err := rules.BudgetUtilization(b)
	if err != nil {
		return core.Notification{}, err
	}
	return core.Notification{
		ID:     s.ids(),
		UserID: b.UserID,
		Type:   core.BudgetAlert,
		Title:  fmt.Sprintf("Budget alert: %s", c.Name),
		Message: fmt.Sprintf("You have used %s%% of your %s %s budget (%s %s of %s %s).",
			util.StringFixed(0), b.Period, c.Name,
			currency, b.Spent, currency, b.Amount),
		Data: map[string]any{
			"budgetId":       b.ID,
			"categoryId":     b.CategoryID,
			"transactionId":  t.ID,
			"spent":          b.Spent.String(),
			"amount":         b.Amount.String(),
			"utilization":    util.StringFixed(2),
			"alertThreshold": b.AlertThreshold,
		},
		CreatedAt: now,
	}, nil
}

func (s *LedgerService) goalMilestone(g core.Goal, milestone int64, currency string, now time.Time) core.Notification {
	title := fmt.Sprintf("%s %s is %d%% there", g.Emoji, g.Name, milestone)
	if milestone == 100 {
		title = fmt.Sprintf("%s %s reached", g.Emoji, g.Name)
	}
	return core.Notification{
		ID:      s.ids(),
		UserID:  g.UserID,
		Type:    core.GoalMilestone,
		Title:   title,
		Message: fmt.Sprintf("Saved %s %s of %s %s.", currency, g.CurrentAmount, currency, g.TargetAmount),
		Data: map[string]any{
			"goalId":        g.ID,
			"milestone":     milestone,
			"currentAmount": g.CurrentAmount.String(),
			"targetAmount":  g.TargetAmount.String(),
		},
		CreatedAt: now,
	}
}

func (s *LedgerService) dailySummary(userID string, d core.DaySummary, currency string, now time.Time) core.Notification {
	day := d.Day.Start.Format("2006-01-02")
	net := core.Money{Cents: d.Net()}
	return core.Notification{
		ID:     s.ids(),
		UserID: userID,
		Type:   core.DailySummary,
		Title:  fmt.Sprintf("Summary for %s", day),
		Message: fmt.Sprintf("%d transactions: income %s %s, expenses %s %s.",
			d.Transactions, currency, d.Income, currency, d.Expense),
		Data: map[string]any{
			"day":          day,
			"income":       d.Income.String(),
			"expense":      d.Expense.String(),
			"net":          net.String(),
			"transactions": d.Transactions,
		},
		CreatedAt: now,
	}
}
