// Package storetest is a conformance suite run against every storage.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage"
)

// Opener returns an empty store; it is called once per subtest.
type Opener func(t *testing.T) storage.Store

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Run executes the suite.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"account", testAccount},
		{"duplicate username", testDuplicateUsername},
		{"categories", testCategories},
		{"record transaction", testRecordTransaction},
		{"list transactions by range", testListTransactions},
		{"budgets", testBudgets},
		{"goals", testGoals},
		{"goal contributions from a stale read", testGoalContributionsAccumulate},
		{"goal contribution rolls back", testGoalContributionRollback},
		{"notifications", testNotifications},
		{"settings", testSettings},
		{"not found", testNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

func seedAccount(t *testing.T, s storage.Store, userID, username string) (core.Category, core.Category) {
	t.Helper()
	u := core.NewUser(userID, username, "hash", t0)
	st := core.DefaultSettings("settings-"+userID, userID, t0)
	food := core.CategoryInput{Name: "Food", Icon: "🍽️", Type: core.Expense, Color: "#F97316"}.Build("food-"+userID, userID, t0)
	food.IsDefault = true
	salary := core.CategoryInput{Name: "Salary", Icon: "💼", Type: core.Income, Color: "#22C55E"}.Build("salary-"+userID, userID, t0)
	require.NoError(t, s.CreateAccount(context.Background(), u, st, []core.Category{food, salary}))
	return food, salary
}

func testAccount(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedAccount(t, s, "u1", "alice")

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, t0, u.CreatedAt)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u, byName)

	st, err := s.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings("settings-u1", "u1", t0), st)
}

func testDuplicateUsername(t *testing.T, s storage.Store) {
	seedAccount(t, s, "u1", "alice")
	u := core.NewUser("u2", "alice", "hash", t0)
	err := s.CreateAccount(context.Background(), u, core.DefaultSettings("s2", "u2", t0), nil)
	assert.ErrorIs(t, err, storage.ErrConflict)

	// nothing of the failed account is kept
	_, err = s.GetUser(context.Background(), "u2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetSettings(context.Background(), "u2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testCategories(t *testing.T, s storage.Store) {
	ctx := context.Background()
	food, _ := seedAccount(t, s, "u1", "alice")
	seedAccount(t, s, "u2", "bob")

	rent := core.CategoryInput{Name: "Rent", Icon: "🏠", Type: core.Expense, Color: "#000000"}.Build("rent", "u1", t0.Add(time.Hour))
	require.NoError(t, s.CreateCategory(ctx, rent))
	assert.ErrorIs(t, s.CreateCategory(ctx, rent), storage.ErrConflict)

	got, err := s.GetCategory(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, food, got)

	list, err := s.ListCategories(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	names := []string{list[0].Name, list[1].Name, list[2].Name}
	assert.Equal(t, []string{"Food", "Rent", "Salary"}, names)
}

func sampleTransaction(id, userID, categoryID string, cents int64, date time.Time) core.Transaction {
	return core.TransactionInput{
		CategoryID:    categoryID,
		Amount:        core.Money{Cents: cents},
		Description:   "txn " + id,
		Type:          core.Expense,
		PaymentMethod: "card",
		Date:          date,
		Tags:          []string{"test"},
	}.Build(id, userID, date)
}

func testRecordTransaction(t *testing.T, s storage.Store) {
	ctx := context.Background()
	food, _ := seedAccount(t, s, "u1", "alice")
	b := core.BudgetInput{CategoryID: food.ID, Amount: core.Money{Cents: 50000}, Period: core.Monthly}.Build("b1", "u1", t0)
	require.NoError(t, s.CreateBudget(ctx, b))

	txn := sampleTransaction("t1", "u1", food.ID, 42000, t0.Add(24*time.Hour))
	txn.IsRecurring = true
	txn.RecurringPattern = &core.RecurringPattern{Interval: core.Monthly, EndDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), Occurrences: 10}
	txn.Location = "Market"
	note := core.Notification{
		ID: "n1", UserID: "u1", Type: core.BudgetAlert,
		Title: "Budget alert", Message: "84% used",
		Data:      map[string]any{"budgetId": "b1"},
		CreatedAt: txn.CreatedAt,
	}
	require.NoError(t, s.RecordTransaction(ctx, txn, []storage.SpentIncrement{{BudgetID: "b1", Delta: txn.Amount}}, []core.Notification{note}))

	got, err := s.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, txn, got)

	gotBudget, err := s.GetBudget(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(42000), gotBudget.Spent.Cents)

	gotNote, err := s.GetNotification(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, note, gotNote)

	// unknown budget rolls the whole unit back
	second := sampleTransaction("t2", "u1", food.ID, 100, t0.Add(48*time.Hour))
	err = s.RecordTransaction(ctx, second, []storage.SpentIncrement{{BudgetID: "missing", Delta: second.Amount}}, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetTransaction(ctx, "t2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, s.RecordTransaction(ctx, txn, nil, nil), storage.ErrConflict)
}

func testListTransactions(t *testing.T, s storage.Store) {
	ctx := context.Background()
	food, _ := seedAccount(t, s, "u1", "alice")
	seedAccount(t, s, "u2", "bob")

	day := core.DateRange{Start: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)}
	for _, txn := range []core.Transaction{
		sampleTransaction("late", "u1", food.ID, 300, day.Start.Add(20*time.Hour)),
		sampleTransaction("early", "u1", food.ID, 100, day.Start),
		sampleTransaction("before", "u1", food.ID, 100, day.Start.Add(-time.Second)),
		sampleTransaction("after", "u1", food.ID, 100, day.End),
		sampleTransaction("other", "u2", "food-u2", 100, day.Start.Add(time.Hour)),
	} {
		require.NoError(t, s.RecordTransaction(ctx, txn, nil, nil))
	}

	list, err := s.ListTransactions(ctx, "u1", day)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].ID)
	assert.Equal(t, "late", list[1].ID)
}

func testBudgets(t *testing.T, s storage.Store) {
	ctx := context.Background()
	food, _ := seedAccount(t, s, "u1", "alice")
	b1 := core.BudgetInput{CategoryID: food.ID, Amount: core.Money{Cents: 50000}, Period: core.Monthly}.Build("b1", "u1", t0)
	b2 := core.BudgetInput{CategoryID: food.ID, Amount: core.Money{Cents: 2000}, Period: core.Daily, AlertThreshold: 50}.Build("b2", "u1", t0.Add(time.Minute))
	require.NoError(t, s.CreateBudget(ctx, b1))
	require.NoError(t, s.CreateBudget(ctx, b2))
	assert.ErrorIs(t, s.CreateBudget(ctx, b1), storage.ErrConflict)

	list, err := s.ListBudgets(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []core.Budget{b1, b2}, list)

	txn := sampleTransaction("t1", "u1", food.ID, 1500, t0)
	require.NoError(t, s.RecordTransaction(ctx, txn, []storage.SpentIncrement{{BudgetID: "b2", Delta: txn.Amount}}, nil))
	require.NoError(t, s.ResetBudgetSpent(ctx, "b2", t0.Add(24*time.Hour)))
	got, err := s.GetBudget(ctx, "b2")
	require.NoError(t, err)
	assert.True(t, got.Spent.IsZero())
	assert.Equal(t, t0.Add(24*time.Hour), got.UpdatedAt)
}

func testGoals(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedAccount(t, s, "u1", "alice")
	g := core.GoalInput{Name: "Trip", TargetAmount: core.Money{Cents: 100000}, TargetDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}.Build("g1", "u1", t0)
	require.NoError(t, s.CreateGoal(ctx, g))

	got, err := s.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, g, got)
	assert.Equal(t, core.DefaultGoalEmoji, got.Emoji)

	at := t0.Add(time.Hour)
	note := core.Notification{ID: "n1", UserID: "u1", Type: core.GoalMilestone, Title: "Milestone", Message: "25%", Data: map[string]any{}, CreatedAt: at}
	after, err := s.AddGoalContribution(ctx, "g1", core.Money{Cents: 25000}, at, func(before, after core.Goal) ([]core.Notification, error) {
		assert.True(t, before.CurrentAmount.IsZero())
		assert.Equal(t, int64(25000), after.CurrentAmount.Cents)
		return []core.Notification{note}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), after.CurrentAmount.Cents)
	assert.Equal(t, at, after.UpdatedAt)

	list, err := s.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(25000), list[0].CurrentAmount.Cents)

	notes, err := s.ListNotifications(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, core.GoalMilestone, notes[0].Type)
}

func testGoalContributionsAccumulate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedAccount(t, s, "u1", "alice")
	g := core.GoalInput{Name: "Car", TargetAmount: core.Money{Cents: 100000}, TargetDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}.Build("g1", "u1", t0)
	require.NoError(t, s.CreateGoal(ctx, g))

	// both writers start from the same read of the goal
	stale, err := s.GetGoal(ctx, "g1")
	require.NoError(t, err)
	var befores []int64
	record := func(before, _ core.Goal) ([]core.Notification, error) {
		befores = append(befores, before.CurrentAmount.Cents)
		return nil, nil
	}
	_, err = s.AddGoalContribution(ctx, stale.ID, core.Money{Cents: 10000}, t0, record)
	require.NoError(t, err)
	after, err := s.AddGoalContribution(ctx, stale.ID, core.Money{Cents: 15000}, t0, record)
	require.NoError(t, err)

	assert.Equal(t, int64(25000), after.CurrentAmount.Cents)
	assert.Equal(t, []int64{0, 10000}, befores)
	got, err := s.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(25000), got.CurrentAmount.Cents)
}

func testGoalContributionRollback(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedAccount(t, s, "u1", "alice")
	g := core.GoalInput{Name: "Car", TargetAmount: core.Money{Cents: 100000}, TargetDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}.Build("g1", "u1", t0)
	require.NoError(t, s.CreateGoal(ctx, g))

	boom := errors.New("boom")
	_, err := s.AddGoalContribution(ctx, "g1", core.Money{Cents: 5000}, t0, func(_, _ core.Goal) ([]core.Notification, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.IsZero())
}

func testNotifications(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedAccount(t, s, "u1", "alice")
	for i, id := range []string{"n1", "n2", "n3"} {
		n := core.Notification{
			ID: id, UserID: "u1", Type: core.DailySummary,
			Title: "Daily summary", Message: id,
			Data:      map[string]any{"day": "2025-03-14"},
			CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.CreateNotification(ctx, n))
	}
	require.NoError(t, s.MarkNotificationRead(ctx, "n2"))

	all, err := s.ListNotifications(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "n3", all[0].ID, "newest first")
	assert.True(t, all[1].IsRead)

	unread, err := s.ListNotifications(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "n3", unread[0].ID)
	assert.Equal(t, "n1", unread[1].ID)
	assert.Equal(t, "2025-03-14", unread[1].Data["day"])

	assert.ErrorIs(t, s.MarkNotificationRead(ctx, "missing"), storage.ErrNotFound)
}

func testSettings(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedAccount(t, s, "u1", "alice")
	st, err := s.GetSettings(ctx, "u1")
	require.NoError(t, err)

	dark := core.ThemeDark
	backup := true
	updated := core.SettingsUpdate{Theme: &dark, AutoBackup: &backup}.Apply(st, t0.Add(time.Hour))
	require.NoError(t, s.UpdateSettings(ctx, updated))

	got, err := s.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, s.SetPIN(ctx, "u1", "pin-hash", t0.Add(2*time.Hour)))
	got, err = s.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.AppLockEnabled)
	assert.Equal(t, "pin-hash", got.PINHash)
	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "pin-hash", u.PINHash)
	assert.False(t, u.BiometricEnabled)

	require.NoError(t, s.SetBiometric(ctx, "u1", true))
	u, err = s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.BiometricEnabled)
	assert.ErrorIs(t, s.SetBiometric(ctx, "nobody", true), storage.ErrNotFound)

	missing := core.DefaultSettings("sx", "nobody", t0)
	assert.ErrorIs(t, s.UpdateSettings(ctx, missing), storage.ErrNotFound)
	assert.ErrorIs(t, s.SetPIN(ctx, "nobody", "x", t0), storage.ErrNotFound)
}

func testNotFound(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.GetUser(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetUserByUsername(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetCategory(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetTransaction(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetBudget(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetGoal(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetNotification(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetSettings(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.ResetBudgetSpent(ctx, "x", t0), storage.ErrNotFound)
	_, err = s.AddGoalContribution(ctx, "x", core.Money{Cents: 1}, t0, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
