package validation

import (
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// User validates a sign-up request. Hashing the password is the caller's job.
func User(raw map[string]any) (core.UserInput, error) {
	r := newReader(raw)
	in := core.UserInput{
		Username: r.requiredString("username", "Username is required"),
	}
	// passwords are not trimmed
	if p, ok := r.raw["password"].(string); ok && p != "" {
		in.Password = p
	} else if r.present("password") && !ok {
		r.errs.Add("password", "password must be a string")
	} else {
		r.errs.Add("password", "Password is required")
	}
	return in, r.err()
}

func Category(raw map[string]any) (core.CategoryInput, error) {
	r := newReader(raw)
	in := core.CategoryInput{
		Name:  r.requiredString("name", "Name is required"),
		Icon:  r.requiredString("icon", "Icon is required"),
		Type:  core.EntryType(r.requiredString("type", "Type is required")),
		Color: r.requiredString("color", "Color is required"),
	}
	if in.Type != "" && !in.Type.Valid() {
		r.errs.Add("type", "type must be one of income, expense")
	}
	return in, r.err()
}

func Goal(raw map[string]any) (core.GoalInput, error) {
	r := newReader(raw)
	in := core.GoalInput{
		Name:         r.requiredString("name", "Name is required"),
		TargetAmount: r.amount("targetAmount", "Target amount is required"),
		TargetDate:   r.date("targetDate", "Target date is required"),
		Description:  r.optionalString("description"),
		Emoji:        r.optionalString("emoji"),
		Color:        r.optionalString("color"),
	}
	return in, r.err()
}

func Budget(raw map[string]any) (core.BudgetInput, error) {
	r := newReader(raw)
	in := core.BudgetInput{
		CategoryID: r.requiredString("categoryId", "Category is required"),
		Amount:     r.amount("amount", "Budget amount is required"),
		Period:     core.Period(r.requiredString("period", "Period is required")),
	}
	if in.Period != "" && !in.Period.Valid() {
		r.errs.Add("period", "period must be one of daily, weekly, monthly")
	}
	if threshold, ok := r.integer("alertThreshold"); ok {
		if threshold < 1 || threshold > 100 {
			r.errs.Add("alertThreshold", "alertThreshold must be between 1 and 100")
		} else {
			in.AlertThreshold = threshold
		}
	}
	if in.AlertThreshold == 0 {
		in.AlertThreshold = core.DefaultAlertThreshold
	}
	return in, r.err()
}

// Contribution validates an amount added to a goal.
func Contribution(raw map[string]any) (core.Money, error) {
	r := newReader(raw)
	m := r.amount("amount", "Amount is required")
	return m, r.err()
}
