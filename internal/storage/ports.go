// Package storage defines the persistence ports of the ledger.
//
// Implementations live in the subpackages sqlstore (SQLite, PostgreSQL)
// and memory.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned for a duplicate username or a second settings record.
	ErrConflict = errors.New("conflict")
)

// SpentIncrement adds Delta to a budget's spent amount.
type SpentIncrement struct {
	BudgetID string
	Delta    core.Money
}

// GoalNotifier builds the notifications for a contribution from the goal
// as it was before and after the increment.
type GoalNotifier func(before, after core.Goal) ([]core.Notification, error)

type (
	Users interface {
		// CreateAccount stores a user with its settings and seed categories atomically.
		CreateAccount(ctx context.Context, u core.User, s core.AppSettings, cats []core.Category) error
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		SetBiometric(ctx context.Context, userID string, enabled bool) error
	}

	Categories interface {
		CreateCategory(ctx context.Context, c core.Category) error
		GetCategory(ctx context.Context, id string) (core.Category, error)
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	}

	Transactions interface {
		// RecordTransaction stores t, applies the spent increments and stores
		// the notifications in one unit of work.
		RecordTransaction(ctx context.Context, t core.Transaction, spent []SpentIncrement, notes []core.Notification) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// ListTransactions returns a user's transactions dated inside r, oldest first.
		ListTransactions(ctx context.Context, userID string, r core.DateRange) ([]core.Transaction, error)
	}

	Budgets interface {
		CreateBudget(ctx context.Context, b core.Budget) error
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		// ResetBudgetSpent starts a new period for the budget.
		ResetBudgetSpent(ctx context.Context, id string, at time.Time) error
	}

	Goals interface {
		CreateGoal(ctx context.Context, g core.Goal) error
		GetGoal(ctx context.Context, id string) (core.Goal, error)
		ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
		// AddGoalContribution increments the goal's current amount and stores
		// the notifications build returns in one unit of work. It returns the
		// goal after the increment. build may be nil.
		AddGoalContribution(ctx context.Context, goalID string, amount core.Money, at time.Time, build GoalNotifier) (core.Goal, error)
	}

	Notifications interface {
		CreateNotification(ctx context.Context, n core.Notification) error
		GetNotification(ctx context.Context, id string) (core.Notification, error)
		ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]core.Notification, error)
		MarkNotificationRead(ctx context.Context, id string) error
	}

	Settings interface {
		GetSettings(ctx context.Context, userID string) (core.AppSettings, error)
		UpdateSettings(ctx context.Context, s core.AppSettings) error
		// SetPIN stores the hashed app-lock PIN on the user and its settings
		// and enables the app lock.
		SetPIN(ctx context.Context, userID, pinHash string, at time.Time) error
	}

	Store interface {
		Users
		Categories
		Transactions
		Budgets
		Goals
		Notifications
		Settings
		Close() error
	}
)
