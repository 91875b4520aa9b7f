package rules

import (
	"github.com/shopspring/decimal"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// Milestones are the goal progress percentages that raise a notification.
var Milestones = []int64{25, 50, 75, 100}

// GoalProgress returns current/target clamped to [0, 1].
func GoalProgress(g core.Goal) (decimal.Decimal, error) {
	if g.TargetAmount.Cents == 0 {
		return decimal.Zero, &core.ComputationError{Op: "goal progress", Err: core.ErrDivisionByZero}
	}
	p := decimal.NewFromInt(g.CurrentAmount.Cents).Div(decimal.NewFromInt(g.TargetAmount.Cents))
	switch {
	case p.IsNegative():
		return decimal.Zero, nil
	case p.GreaterThan(decimal.NewFromInt(1)):
		return decimal.NewFromInt(1), nil
	}
	return p, nil
}

// GoalMilestone returns the highest milestone crossed when a goal's current
// amount moves from before to after. ok is false when none was crossed.
func GoalMilestone(before, after, target core.Money) (milestone int64, ok bool) {
	if target.Cents <= 0 {
		return 0, false
	}
	for _, m := range Milestones {
		mark := m * target.Cents
		if before.Cents*100 < mark && after.Cents*100 >= mark {
			milestone, ok = m, true
		}
	}
	return milestone, ok
}
