package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipereverie-droid/Budget-Tracker/internal/auth"
	"github.com/recipereverie-droid/Budget-Tracker/internal/cache"
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/log"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage/memory"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type fakePublisher struct {
	mu            sync.Mutex
	notifications []core.Notification
	transactions  []core.Transaction
	err           error
}

func (p *fakePublisher) PublishNotification(_ context.Context, n core.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.notifications = append(p.notifications, n)
	return nil
}

func (p *fakePublisher) PublishTransactionRecorded(_ context.Context, t core.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.transactions = append(p.transactions, t)
	return nil
}

type fixture struct {
	svc    *LedgerService
	pub    *fakePublisher
	logs   *bytes.Buffer
	user   core.User
	food   core.Category
	salary core.Category
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{pub: &fakePublisher{}, logs: &bytes.Buffer{}}
	logger := log.New(log.Config{Level: slog.LevelDebug, Format: "text", Output: f.logs})
	base := []Option{
		WithIDGenerator(core.SequentialIDs("id")),
		WithClock(func() time.Time { return testNow }),
		WithPasswordHasher(auth.Bcrypt{Cost: 4}),
		WithLogger(logger),
	}
	f.svc = NewLedgerService(memory.New(), f.pub, append(base, opts...)...)

	ctx := context.Background()
	u, err := f.svc.RegisterUser(ctx, map[string]any{"username": "asha", "password": "s3cret!"})
	require.NoError(t, err)
	f.user = u

	cats, err := f.svc.Categories(ctx, u.ID)
	require.NoError(t, err)
	for _, c := range cats {
		switch c.Name {
		case "Food & Dining":
			f.food = c
		case "Salary":
			f.salary = c
		}
	}
	require.NotEmpty(t, f.food.ID)
	require.NotEmpty(t, f.salary.ID)
	return f
}

func (f *fixture) budget(t *testing.T, amount string) core.Budget {
	t.Helper()
	b, err := f.svc.CreateBudget(context.Background(), f.user.ID, map[string]any{
		"categoryId": f.food.ID,
		"amount":     amount,
		"period":     "monthly",
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) expense(amount, date string) map[string]any {
	return map[string]any{
		"categoryId":    f.food.ID,
		"amount":        amount,
		"description":   "Groceries",
		"type":          "expense",
		"paymentMethod": "upi",
		"date":          date,
	}
}

func TestRegisterUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "asha", f.user.Username)
	assert.NotEqual(t, "s3cret!", f.user.PasswordHash)

	cats, err := f.svc.Categories(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories()))
	for _, c := range cats {
		assert.True(t, c.IsDefault, c.Name)
	}

	st, err := f.svc.Settings(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCurrency, st.Currency)
	assert.True(t, st.BudgetAlerts)
	assert.False(t, st.AppLockEnabled)

	_, err = f.svc.RegisterUser(ctx, map[string]any{"username": "asha", "password": "other"})
	require.ErrorIs(t, err, core.ErrValidation)
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Username is already taken", ve.Message("username"))

	_, err = f.svc.RegisterUser(ctx, map[string]any{"username": "  "})
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestVerifyPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.VerifyPassword(ctx, "asha", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, u.ID)

	_, err = f.svc.VerifyPassword(ctx, "asha", "wrong")
	assert.ErrorIs(t, err, auth.ErrMismatch)
	_, err = f.svc.VerifyPassword(ctx, "nobody", "s3cret!")
	assert.ErrorIs(t, err, auth.ErrMismatch)
}

func TestRecordTransaction_BudgetAlertScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.budget(t, "500.00")
	assert.Equal(t, 80, b.AlertThreshold)

	res, err := f.svc.RecordTransaction(ctx, f.user.ID, f.expense("420.00", "2025-03-14"))
	require.NoError(t, err)
	assert.Equal(t, int64(42000), res.Transaction.Amount.Cents)
	require.Len(t, res.Notifications, 1)

	n := res.Notifications[0]
	assert.Equal(t, core.BudgetAlert, n.Type)
	assert.Equal(t, f.user.ID, n.UserID)
	assert.Equal(t, "Budget alert: Food & Dining", n.Title)
	assert.Contains(t, n.Message, "84%")
	assert.Equal(t, b.ID, n.Data["budgetId"])
	assert.Equal(t, "84.00", n.Data["utilization"])

	statuses, err := f.svc.BudgetStatus(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, int64(42000), statuses[0].Budget.Spent.Cents)
	assert.True(t, statuses[0].Utilization.Equal(decimal.NewFromInt(84)))
	assert.True(t, statuses[0].Triggered)

	// already over the threshold, no second alert
	res, err = f.svc.RecordTransaction(ctx, f.user.ID, f.expense("10.00", "2025-03-15"))
	require.NoError(t, err)
	assert.Empty(t, res.Notifications)

	notes, err := f.svc.Notifications(ctx, f.user.ID, false)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Len(t, f.pub.notifications, 1)
	assert.Empty(t, f.pub.transactions, "auto backup is off by default")
}

func TestRecordTransaction_OnlyCountsCurrentWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.budget(t, "500.00")

	_, err := f.svc.RecordTransaction(ctx, f.user.ID, f.expense("450.00", "2025-02-27"))
	require.NoError(t, err)

	income := map[string]any{
		"categoryId":    f.salary.ID,
		"amount":        "5000",
		"description":   "March salary",
		"type":          "income",
		"paymentMethod": "bank",
		"date":          "2025-03-01",
	}
	_, err = f.svc.RecordTransaction(ctx, f.user.ID, income)
	require.NoError(t, err)

	statuses, err := f.svc.BudgetStatus(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Budget.Spent.IsZero())
	assert.False(t, statuses[0].Triggered)

	txns, err := f.svc.Transactions(ctx, f.user.ID, core.DateRange{
		Start: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestRecordTransaction_ReferenceChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw := f.expense("10", "2025-03-14")
	raw["type"] = "income"
	_, err := f.svc.RecordTransaction(ctx, f.user.ID, raw)
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)

	raw = f.expense("10", "2025-03-14")
	raw["categoryId"] = "missing"
	_, err = f.svc.RecordTransaction(ctx, f.user.ID, raw)
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)

	other, err := f.svc.RegisterUser(ctx, map[string]any{"username": "ravi", "password": "pw"})
	require.NoError(t, err)
	_, err = f.svc.RecordTransaction(ctx, other.ID, f.expense("10", "2025-03-14"))
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)

	_, err = f.svc.RecordTransaction(ctx, f.user.ID, map[string]any{})
	assert.ErrorIs(t, err, core.ErrValidation)

	txns, err := f.svc.Transactions(ctx, f.user.ID, core.DateRange{Start: testNow.AddDate(-1, 0, 0), End: testNow.AddDate(1, 0, 0)})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestRecordTransaction_RespectsSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.budget(t, "100.00")

	_, err := f.svc.UpdateSettings(ctx, f.user.ID, map[string]any{"budgetAlerts": false, "autoBackup": true})
	require.NoError(t, err)

	res, err := f.svc.RecordTransaction(ctx, f.user.ID, f.expense("99.00", "2025-03-14"))
	require.NoError(t, err)
	assert.Empty(t, res.Notifications)
	require.Len(t, f.pub.transactions, 1)
	assert.Equal(t, res.Transaction.ID, f.pub.transactions[0].ID)

	statuses, err := f.svc.BudgetStatus(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9900), statuses[0].Budget.Spent.Cents)
}

func TestRecordTransaction_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.budget(t, "100.00")
	f.pub.err = errors.New("broker down")

	res, err := f.svc.RecordTransaction(ctx, f.user.ID, f.expense("90.00", "2025-03-14"))
	require.NoError(t, err)
	require.Len(t, res.Notifications, 1)
	assert.Contains(t, f.logs.String(), "Failed to publish notification")

	notes, err := f.svc.Notifications(ctx, f.user.ID, true)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestRecordTransaction_NoPublisher(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil,
		WithPasswordHasher(auth.Bcrypt{Cost: 4}),
		WithClock(func() time.Time { return testNow }))
	ctx := context.Background()
	u, err := svc.RegisterUser(ctx, map[string]any{"username": "solo", "password": "pw"})
	require.NoError(t, err)
	cats, err := svc.Categories(ctx, u.ID)
	require.NoError(t, err)

	var food core.Category
	for _, c := range cats {
		if c.Type == core.Expense {
			food = c
			break
		}
	}
	_, err = svc.CreateBudget(ctx, u.ID, map[string]any{"categoryId": food.ID, "amount": "10", "period": "daily"})
	require.NoError(t, err)
	res, err := svc.RecordTransaction(ctx, u.ID, map[string]any{
		"categoryId":    food.ID,
		"amount":        "10",
		"description":   "Lunch",
		"type":          "expense",
		"paymentMethod": "cash",
		"date":          "2025-03-14T12:30",
	})
	require.NoError(t, err)
	assert.Len(t, res.Notifications, 1)
}

func TestCreateBudget_RequiresExpenseCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBudget(context.Background(), f.user.ID, map[string]any{
		"categoryId": f.salary.ID,
		"amount":     "100",
		"period":     "monthly",
	})
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)

	_, err = f.svc.CreateBudget(context.Background(), f.user.ID, map[string]any{
		"categoryId": f.food.ID,
		"amount":     "100",
		"period":     "yearly",
	})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestResetBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.budget(t, "100.00")
	_, err := f.svc.RecordTransaction(ctx, f.user.ID, f.expense("40", "2025-03-14"))
	require.NoError(t, err)

	other, err := f.svc.RegisterUser(ctx, map[string]any{"username": "ravi", "password": "pw"})
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.ResetBudget(ctx, other.ID, b.ID), core.ErrReferentialInconsistency)
	assert.ErrorIs(t, f.svc.ResetBudget(ctx, f.user.ID, "missing"), core.ErrReferentialInconsistency)

	require.NoError(t, f.svc.ResetBudget(ctx, f.user.ID, b.ID))
	statuses, err := f.svc.BudgetStatus(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, statuses[0].Budget.Spent.IsZero())
}

func TestContributeToGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.CreateGoal(ctx, f.user.ID, map[string]any{
		"name":         "Emergency fund",
		"targetAmount": "1000.00",
		"targetDate":   "2025-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultGoalEmoji, g.Emoji)
	assert.True(t, g.IsActive)

	c, err := f.svc.ContributeToGoal(ctx, f.user.ID, g.ID, map[string]any{"amount": "300"})
	require.NoError(t, err)
	assert.True(t, c.Progress.Equal(decimal.RequireFromString("0.3")))
	require.NotNil(t, c.Notification)
	assert.Equal(t, core.GoalMilestone, c.Notification.Type)
	assert.Equal(t, int64(25), c.Notification.Data["milestone"])

	c, err = f.svc.ContributeToGoal(ctx, f.user.ID, g.ID, map[string]any{"amount": "500"})
	require.NoError(t, err)
	require.NotNil(t, c.Notification)
	assert.Equal(t, int64(75), c.Notification.Data["milestone"])

	c, err = f.svc.ContributeToGoal(ctx, f.user.ID, g.ID, map[string]any{"amount": "10"})
	require.NoError(t, err)
	assert.Nil(t, c.Notification)
	assert.Equal(t, int64(81000), c.Goal.CurrentAmount.Cents)

	c, err = f.svc.ContributeToGoal(ctx, f.user.ID, g.ID, map[string]any{"amount": "500"})
	require.NoError(t, err)
	assert.True(t, c.Progress.Equal(decimal.NewFromInt(1)))
	require.NotNil(t, c.Notification)
	assert.Contains(t, c.Notification.Title, "reached")

	goals, err := f.svc.Goals(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, int64(131000), goals[0].CurrentAmount.Cents)
	assert.Len(t, f.pub.notifications, 3)
}

func TestContributeToGoal_ConcurrentContributionsAllCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGoal(ctx, f.user.ID, map[string]any{
		"name":         "House",
		"targetAmount": "10000",
		"targetDate":   "2026-12-31",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ContributeToGoal(ctx, f.user.ID, g.ID, map[string]any{"amount": "25"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	goals, err := f.svc.Goals(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, int64(50000), goals[0].CurrentAmount.Cents)
	// 500 of 10000 crosses no milestone
	assert.Empty(t, f.pub.notifications)
}

func TestContributeToGoal_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGoal(ctx, f.user.ID, map[string]any{
		"name":         "Trip",
		"targetAmount": "100",
		"targetDate":   "2025-06-01",
	})
	require.NoError(t, err)

	_, err = f.svc.ContributeToGoal(ctx, f.user.ID, g.ID, map[string]any{})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = f.svc.ContributeToGoal(ctx, f.user.ID, "missing", map[string]any{"amount": "1"})
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)
	_, err = f.svc.ContributeToGoal(ctx, "someone-else", g.ID, map[string]any{"amount": "1"})
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)

	_, err = f.svc.CreateGoal(ctx, "missing-user", map[string]any{
		"name":         "Trip",
		"targetAmount": "100",
		"targetDate":   "2025-06-01",
	})
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)
}

func TestGoalMilestonesDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.UpdateSettings(ctx, f.user.ID, map[string]any{"goalMilestones": false})
	require.NoError(t, err)
	g, err := f.svc.CreateGoal(ctx, f.user.ID, map[string]any{
		"name":         "Bike",
		"targetAmount": "200",
		"targetDate":   "2025-09-01",
	})
	require.NoError(t, err)

	c, err := f.svc.ContributeToGoal(ctx, f.user.ID, g.ID, map[string]any{"amount": "200"})
	require.NoError(t, err)
	assert.Nil(t, c.Notification)
	assert.Empty(t, f.pub.notifications)
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.UpdateSettings(ctx, f.user.ID, map[string]any{"theme": "dark", "currency": "EUR"})
	require.NoError(t, err)
	assert.Equal(t, core.Theme("dark"), st.Theme)
	assert.Equal(t, "EUR", st.Currency)

	_, err = f.svc.UpdateSettings(ctx, f.user.ID, map[string]any{"appLockEnabled": true})
	require.ErrorIs(t, err, core.ErrValidation)
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("appLockEnabled"))

	_, err = f.svc.UpdateSettings(ctx, f.user.ID, map[string]any{"pinHash": "x"})
	require.ErrorIs(t, err, core.ErrValidation)

	same, err := f.svc.UpdateSettings(ctx, f.user.ID, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, st, same)
}

func TestAppLockPIN(t *testing.T) {
	settings := cache.NewLRUCache[core.AppSettings](10, time.Hour)
	f := newFixture(t, WithSettingsCache(settings))
	ctx := context.Background()

	// warm the cache so the PIN change has to invalidate it
	_, err := f.svc.Settings(ctx, f.user.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.SetAppLockPIN(ctx, f.user.ID, "12a4"), core.ErrValidation)
	assert.ErrorIs(t, f.svc.SetAppLockPIN(ctx, "missing", "1234"), core.ErrReferentialInconsistency)
	assert.ErrorIs(t, f.svc.VerifyPIN(ctx, f.user.ID, "1234"), auth.ErrMismatch)

	require.NoError(t, f.svc.SetAppLockPIN(ctx, f.user.ID, "1234"))
	st, err := f.svc.Settings(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, st.AppLockEnabled)
	assert.NotEmpty(t, st.PINHash)

	assert.NoError(t, f.svc.VerifyPIN(ctx, f.user.ID, "1234"))
	assert.ErrorIs(t, f.svc.VerifyPIN(ctx, f.user.ID, "4321"), auth.ErrMismatch)

	_, err = f.svc.UpdateSettings(ctx, f.user.ID, map[string]any{"appLockEnabled": true})
	assert.NoError(t, err)
}

func TestSetBiometric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.SetBiometric(ctx, f.user.ID, true), core.ErrValidation)
	require.NoError(t, f.svc.SetAppLockPIN(ctx, f.user.ID, "1234"))
	require.NoError(t, f.svc.SetBiometric(ctx, f.user.ID, true))

	u, err := f.svc.VerifyPassword(ctx, "asha", "s3cret!")
	require.NoError(t, err)
	assert.True(t, u.BiometricEnabled)

	require.NoError(t, f.svc.SetBiometric(ctx, f.user.ID, false))
	u, err = f.svc.VerifyPassword(ctx, "asha", "s3cret!")
	require.NoError(t, err)
	assert.False(t, u.BiometricEnabled)

	assert.ErrorIs(t, f.svc.SetBiometric(ctx, "missing", false), core.ErrReferentialInconsistency)
}

func TestDailySummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, raw := range []map[string]any{
		f.expense("120.50", "2025-03-14T08:00"),
		f.expense("30", "2025-03-14T19:45"),
		f.expense("99", "2025-03-13"),
		{
			"categoryId":    f.salary.ID,
			"amount":        "1000",
			"description":   "Invoice",
			"type":          "income",
			"paymentMethod": "bank",
			"date":          "2025-03-14",
		},
	} {
		_, err := f.svc.RecordTransaction(ctx, f.user.ID, raw)
		require.NoError(t, err)
	}

	day := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	sum, note, err := f.svc.DailySummary(ctx, f.user.ID, day)
	require.NoError(t, err)
	assert.Nil(t, note, "daily summaries are off by default")
	assert.Equal(t, 3, sum.Transactions)
	assert.Equal(t, int64(100000), sum.Income.Cents)
	assert.Equal(t, int64(15050), sum.Expense.Cents)

	_, err = f.svc.UpdateSettings(ctx, f.user.ID, map[string]any{"dailySummary": true})
	require.NoError(t, err)
	_, note, err = f.svc.DailySummary(ctx, f.user.ID, day)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, core.DailySummary, note.Type)
	assert.Equal(t, "Summary for 2025-03-14", note.Title)
	assert.Equal(t, "849.50", note.Data["net"])
}

func TestMarkNotificationRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.budget(t, "10.00")
	res, err := f.svc.RecordTransaction(ctx, f.user.ID, f.expense("10", "2025-03-14"))
	require.NoError(t, err)
	require.Len(t, res.Notifications, 1)
	id := res.Notifications[0].ID

	assert.ErrorIs(t, f.svc.MarkNotificationRead(ctx, "intruder", id), core.ErrReferentialInconsistency)
	assert.ErrorIs(t, f.svc.MarkNotificationRead(ctx, f.user.ID, "missing"), core.ErrReferentialInconsistency)

	require.NoError(t, f.svc.MarkNotificationRead(ctx, f.user.ID, id))
	require.NoError(t, f.svc.MarkNotificationRead(ctx, f.user.ID, id))

	unread, err := f.svc.Notifications(ctx, f.user.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestClose(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil)
	assert.NoError(t, svc.Close())
}
