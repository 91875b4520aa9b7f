package validation

import (
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// CheckTransactionCategory verifies the category a new transaction points
// at belongs to the same user and has the same type.
func CheckTransactionCategory(userID string, in core.TransactionInput, c core.Category) error {
	if c.ID != in.CategoryID {
		return &core.ReferenceError{Entity: "category", ID: in.CategoryID, Reason: "not found"}
	}
	if c.UserID != userID {
		return &core.ReferenceError{Entity: "category", ID: c.ID, Reason: "belongs to another user"}
	}
	if c.Type != in.Type {
		return &core.ReferenceError{
			Entity: "category",
			ID:     c.ID,
			Reason: "transaction type " + string(in.Type) + " does not match category type " + string(c.Type),
		}
	}
	return nil
}

// CheckBudgetCategory verifies a budget targets an expense category of the same user.
func CheckBudgetCategory(userID string, in core.BudgetInput, c core.Category) error {
	if c.ID != in.CategoryID {
		return &core.ReferenceError{Entity: "category", ID: in.CategoryID, Reason: "not found"}
	}
	if c.UserID != userID {
		return &core.ReferenceError{Entity: "category", ID: c.ID, Reason: "belongs to another user"}
	}
	if c.Type != core.Expense {
		return &core.ReferenceError{Entity: "category", ID: c.ID, Reason: "budgets require an expense category"}
	}
	return nil
}

// CheckOwner verifies a record is owned by userID.
func CheckOwner(entity, id, ownerID, userID string) error {
	if ownerID != userID {
		return &core.ReferenceError{Entity: entity, ID: id, Reason: "belongs to another user"}
	}
	return nil
}
