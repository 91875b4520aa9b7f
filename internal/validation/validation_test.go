package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

func validTransaction() map[string]any {
	return map[string]any{
		"categoryId":    "cat-1",
		"amount":        "420.00",
		"description":   "Groceries",
		"type":          "expense",
		"paymentMethod": "upi",
		"date":          "2025-03-14",
	}
}

func asValidationError(t *testing.T, err error) *core.ValidationError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, core.ErrValidation), "expected a validation error, got %v", err)
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	return ve
}

func TestTransaction_Valid(t *testing.T) {
	raw := validTransaction()
	raw["tags"] = []any{"food", "weekly"}
	raw["location"] = "Market"

	in, err := Transaction(raw)
	require.NoError(t, err)

	assert.Equal(t, "cat-1", in.CategoryID)
	assert.Equal(t, int64(42000), in.Amount.Cents)
	assert.Equal(t, core.Expense, in.Type)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), in.Date)
	assert.Equal(t, []string{"food", "weekly"}, in.Tags)
	assert.Equal(t, "Market", in.Location)
	assert.False(t, in.IsRecurring)
	assert.Nil(t, in.RecurringPattern)
}

func TestTransaction_AcceptsPositiveDecimals(t *testing.T) {
	for _, amount := range []string{"0.01", "1", "12,50", "9999999999.99", "420.000"} {
		raw := validTransaction()
		raw["amount"] = amount
		_, err := Transaction(raw)
		assert.NoError(t, err, "amount %q", amount)
	}
}

func TestTransaction_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		field   string
		message string
	}{
		{"empty amount", func(m map[string]any) { m["amount"] = "" }, "amount", "Amount is required"},
		{"missing amount", func(m map[string]any) { delete(m, "amount") }, "amount", "Amount is required"},
		{"empty date", func(m map[string]any) { m["date"] = "" }, "date", "Date is required"},
		{"missing date", func(m map[string]any) { delete(m, "date") }, "date", "Date is required"},
		{"blank description", func(m map[string]any) { m["description"] = "   " }, "description", "Description is required"},
		{"missing category", func(m map[string]any) { delete(m, "categoryId") }, "categoryId", "Category is required"},
		{"missing payment method", func(m map[string]any) { delete(m, "paymentMethod") }, "paymentMethod", "Payment method is required"},
		{"null type", func(m map[string]any) { m["type"] = nil }, "type", "Type is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validTransaction()
			tt.mutate(raw)
			_, err := Transaction(raw)
			ve := asValidationError(t, err)
			assert.True(t, ve.Has(tt.field), "fields: %v", ve.Fields)
			assert.Equal(t, tt.message, ve.Message(tt.field))
			assert.Len(t, ve.Fields, 1)
		})
	}
}

func TestTransaction_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"non numeric amount", "amount", "abc"},
		{"zero amount", "amount", "0"},
		{"negative amount", "amount", "-5"},
		{"amount too large", "amount", "10000000000.00"},
		{"sub-cent amount", "amount", "420.005"},
		{"half a cent", "amount", "0.005"},
		{"amount as bool", "amount", true},
		{"unparseable date", "date", "14/03/2025"},
		{"unknown type", "type", "transfer"},
		{"tags not strings", "tags", []any{"ok", 3.0}},
		{"tags not array", "tags", "food"},
		{"isRecurring not bool", "isRecurring", "yes"},
		{"location not string", "location", 12.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validTransaction()
			raw[tt.key] = tt.value
			_, err := Transaction(raw)
			ve := asValidationError(t, err)
			assert.True(t, ve.Has(tt.key), "fields: %v", ve.Fields)
		})
	}
}

func TestTransaction_CollectsEveryField(t *testing.T) {
	_, err := Transaction(map[string]any{})
	ve := asValidationError(t, err)
	for _, field := range []string{"categoryId", "amount", "description", "type", "paymentMethod", "date"} {
		assert.True(t, ve.Has(field), "expected %s to be reported", field)
	}
}

func TestTransaction_RecurringPattern(t *testing.T) {
	t.Run("valid pattern", func(t *testing.T) {
		raw := validTransaction()
		raw["isRecurring"] = true
		raw["recurringPattern"] = map[string]any{
			"interval":    "monthly",
			"endDate":     "2025-12-31",
			"occurrences": 10.0,
		}
		in, err := Transaction(raw)
		require.NoError(t, err)
		require.NotNil(t, in.RecurringPattern)
		assert.True(t, in.IsRecurring)
		assert.Equal(t, core.Monthly, in.RecurringPattern.Interval)
		assert.Equal(t, 10, in.RecurringPattern.Occurrences)
	})

	t.Run("recurring without pattern", func(t *testing.T) {
		raw := validTransaction()
		raw["isRecurring"] = true
		_, err := Transaction(raw)
		ve := asValidationError(t, err)
		assert.True(t, ve.Has("recurringPattern"))
	})

	t.Run("bad interval and occurrences", func(t *testing.T) {
		raw := validTransaction()
		raw["isRecurring"] = true
		raw["recurringPattern"] = map[string]any{
			"interval":    "yearly",
			"endDate":     "2025-12-31",
			"occurrences": 0.0,
		}
		_, err := Transaction(raw)
		ve := asValidationError(t, err)
		assert.True(t, ve.Has("recurringPattern.interval"))
		assert.True(t, ve.Has("recurringPattern.occurrences"))
		assert.False(t, ve.Has("recurringPattern"))
	})

	t.Run("pattern kept when not recurring", func(t *testing.T) {
		raw := validTransaction()
		raw["recurringPattern"] = map[string]any{
			"interval":    "weekly",
			"endDate":     "2025-12-31T00:00:00Z",
			"occurrences": "4",
		}
		in, err := Transaction(raw)
		require.NoError(t, err)
		require.NotNil(t, in.RecurringPattern)
		assert.Equal(t, 4, in.RecurringPattern.Occurrences)
	})
}

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2025-03-14":                time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		"2025-03-14T09:30":          time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		"2025-03-14T09:30:15":       time.Date(2025, 3, 14, 9, 30, 15, 0, time.UTC),
		"2025-03-14T09:30:15+05:30": time.Date(2025, 3, 14, 4, 0, 15, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %v want %v", in, got, want)
	}
	_, err := ParseDate("yesterday")
	assert.Error(t, err)
}

func TestUser(t *testing.T) {
	in, err := User(map[string]any{"username": " alice ", "password": " secret "})
	require.NoError(t, err)
	assert.Equal(t, "alice", in.Username)
	assert.Equal(t, " secret ", in.Password, "passwords are kept verbatim")

	_, err = User(map[string]any{"username": "", "password": ""})
	ve := asValidationError(t, err)
	assert.Equal(t, "Username is required", ve.Message("username"))
	assert.Equal(t, "Password is required", ve.Message("password"))

	_, err = User(map[string]any{"username": "bob", "password": 1234.0})
	ve = asValidationError(t, err)
	assert.Equal(t, "password must be a string", ve.Message("password"))
}

func TestCategory(t *testing.T) {
	in, err := Category(map[string]any{"name": "Food", "icon": "🍽️", "type": "expense", "color": "#F97316"})
	require.NoError(t, err)
	assert.Equal(t, core.Expense, in.Type)

	_, err = Category(map[string]any{"name": "Food", "icon": "x", "type": "savings", "color": "#fff"})
	ve := asValidationError(t, err)
	assert.True(t, ve.Has("type"))
}

func TestGoal(t *testing.T) {
	in, err := Goal(map[string]any{
		"name":         "Emergency fund",
		"targetAmount": "1000.00",
		"targetDate":   "2026-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), in.TargetAmount.Cents)
	assert.Empty(t, in.Emoji)

	_, err = Goal(map[string]any{"name": "Trip", "targetAmount": "", "targetDate": ""})
	ve := asValidationError(t, err)
	assert.Equal(t, "Target amount is required", ve.Message("targetAmount"))
	assert.Equal(t, "Target date is required", ve.Message("targetDate"))
}

func TestBudget(t *testing.T) {
	in, err := Budget(map[string]any{"categoryId": "c1", "amount": "500.00", "period": "monthly"})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultAlertThreshold, in.AlertThreshold)
	assert.Equal(t, int64(50000), in.Amount.Cents)

	in, err = Budget(map[string]any{"categoryId": "c1", "amount": "500", "period": "weekly", "alertThreshold": 90.0})
	require.NoError(t, err)
	assert.Equal(t, 90, in.AlertThreshold)

	tests := []struct {
		name  string
		raw   map[string]any
		field string
	}{
		{"empty amount", map[string]any{"categoryId": "c1", "amount": "", "period": "monthly"}, "amount"},
		{"bad period", map[string]any{"categoryId": "c1", "amount": "5", "period": "yearly"}, "period"},
		{"threshold out of range", map[string]any{"categoryId": "c1", "amount": "5", "period": "daily", "alertThreshold": 150.0}, "alertThreshold"},
		{"fractional threshold", map[string]any{"categoryId": "c1", "amount": "5", "period": "daily", "alertThreshold": 80.5}, "alertThreshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Budget(tt.raw)
			ve := asValidationError(t, err)
			assert.True(t, ve.Has(tt.field), "fields: %v", ve.Fields)
		})
	}

	_, err = Budget(map[string]any{"categoryId": "c1", "amount": "", "period": "monthly"})
	ve := asValidationError(t, err)
	assert.Equal(t, "Budget amount is required", ve.Message("amount"))
}

func TestSettingsUpdate(t *testing.T) {
	u, err := SettingsUpdate(map[string]any{"theme": "dark", "currency": "USD", "autoBackup": true})
	require.NoError(t, err)
	require.NotNil(t, u.Theme)
	assert.Equal(t, core.ThemeDark, *u.Theme)
	assert.Equal(t, "USD", *u.Currency)
	assert.True(t, *u.AutoBackup)
	assert.Nil(t, u.Language)
	assert.Nil(t, u.BudgetAlerts)

	u, err = SettingsUpdate(map[string]any{})
	require.NoError(t, err)
	assert.True(t, u.IsEmpty())

	_, err = SettingsUpdate(map[string]any{
		"id":           "x",
		"userId":       "u2",
		"theme":        "neon",
		"language":     "fr",
		"currency":     "rupees",
		"budgetAlerts": "yes",
	})
	ve := asValidationError(t, err)
	for _, field := range []string{"id", "userId", "theme", "language", "currency", "budgetAlerts"} {
		assert.True(t, ve.Has(field), "expected %s to be reported", field)
	}

	_, err = SettingsUpdate(map[string]any{"theme": 3.0})
	ve = asValidationError(t, err)
	assert.Len(t, ve.Fields, 1)
}

func TestCheckTransactionCategory(t *testing.T) {
	in := core.TransactionInput{CategoryID: "c1", Type: core.Expense}

	ok := core.Category{ID: "c1", UserID: "u1", Type: core.Expense}
	assert.NoError(t, CheckTransactionCategory("u1", in, ok))

	otherUser := core.Category{ID: "c1", UserID: "u2", Type: core.Expense}
	err := CheckTransactionCategory("u1", in, otherUser)
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)

	income := core.Category{ID: "c1", UserID: "u1", Type: core.Income}
	err = CheckTransactionCategory("u1", in, income)
	assert.ErrorIs(t, err, core.ErrReferentialInconsistency)
	assert.Contains(t, err.Error(), "does not match")
}

func TestCheckBudgetCategory(t *testing.T) {
	in := core.BudgetInput{CategoryID: "c1"}
	assert.NoError(t, CheckBudgetCategory("u1", in, core.Category{ID: "c1", UserID: "u1", Type: core.Expense}))
	assert.ErrorIs(t, CheckBudgetCategory("u1", in, core.Category{ID: "c1", UserID: "u1", Type: core.Income}), core.ErrReferentialInconsistency)
	assert.ErrorIs(t, CheckBudgetCategory("u1", in, core.Category{ID: "c1", UserID: "u9", Type: core.Expense}), core.ErrReferentialInconsistency)
}

func TestContribution(t *testing.T) {
	m, err := Contribution(map[string]any{"amount": "25.50"})
	require.NoError(t, err)
	assert.Equal(t, int64(2550), m.Cents)

	_, err = Contribution(map[string]any{})
	ve := asValidationError(t, err)
	assert.Equal(t, "Amount is required", ve.Message("amount"))

	_, err = Contribution(map[string]any{"amount": "-3"})
	asValidationError(t, err)
}
