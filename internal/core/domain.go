package core

import (
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

const (
	BudgetAlert   NotificationType = "budget_alert"
	GoalMilestone NotificationType = "goal_milestone"
	DailySummary  NotificationType = "daily_summary"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

const (
	LanguageEnglish Language = "en"
	LanguageTelugu  Language = "te"
)

const (
	DefaultAlertThreshold = 80
	DefaultGoalEmoji      = "🎯"
	DefaultGoalColor      = "#3B82F6"
	DefaultCurrency       = "INR"
)

type (
	// EntryType is shared by categories and transactions; a transaction's
	// type must equal its category's.
	EntryType string

	// Period is both a budget period and a recurrence interval.
	Period string

	NotificationType string

	Theme string

	Language string

	User struct {
		ID               string
		Username         string
		PasswordHash     string `json:"-"`
		PINHash          string `json:"-"`
		BiometricEnabled bool
		CreatedAt        time.Time
	}

	Category struct {
		ID        string
		UserID    string
		Name      string
		Icon      string
		Type      EntryType
		Color     string
		IsDefault bool
		CreatedAt time.Time
	}

	// RecurringPattern is stored with a transaction and never executed here.
	RecurringPattern struct {
		Interval    Period    `json:"interval"`
		EndDate     time.Time `json:"endDate"`
		Occurrences int       `json:"occurrences"`
	}

	Transaction struct {
		ID               string
		UserID           string
		CategoryID       string
		Amount           Money
		Description      string
		Type             EntryType
		PaymentMethod    string
		Date             time.Time
		Location         string
		ReceiptURL       string
		IsRecurring      bool
		RecurringPattern *RecurringPattern
		Tags             []string
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}

	Goal struct {
		ID            string
		UserID        string
		Name          string
		Description   string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    time.Time
		Emoji         string
		Color         string
		IsActive      bool
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	Budget struct {
		ID             string
		UserID         string
		CategoryID     string
		Amount         Money // limit for one period
		Period         Period
		Spent          Money
		AlertThreshold int // percent
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	Notification struct {
		ID        string
		UserID    string
		Type      NotificationType
		Title     string
		Message   string
		Data      map[string]any
		IsRead    bool
		CreatedAt time.Time
	}

	AppSettings struct {
		ID                  string
		UserID              string
		Theme               Theme
		Language            Language
		Currency            string
		AppLockEnabled      bool
		PINHash             string `json:"-"`
		DataEncryption      bool
		BudgetAlerts        bool
		GoalMilestones      bool
		DailySummary        bool
		AutoBackup          bool
		SmartCategorization bool
		LocationTracking    bool
		CreatedAt           time.Time
		UpdatedAt           time.Time
	}

	// DateRange is half-open: Start <= t < End.
	DateRange struct {
		Start time.Time
		End   time.Time
	}
)

func (t EntryType) Valid() bool {
	switch t {
	case Income, Expense:
		return true
	}
	return false
}

func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

func (n NotificationType) Valid() bool {
	switch n {
	case BudgetAlert, GoalMilestone, DailySummary:
		return true
	}
	return false
}

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeAuto:
		return true
	}
	return false
}

func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageTelugu:
		return true
	}
	return false
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// DefaultSettings returns the settings record created alongside a new user.
func DefaultSettings(id, userID string, now time.Time) AppSettings {
	return AppSettings{
		ID:                  id,
		UserID:              userID,
		Theme:               ThemeAuto,
		Language:            LanguageEnglish,
		Currency:            DefaultCurrency,
		DataEncryption:      true,
		BudgetAlerts:        true,
		GoalMilestones:      true,
		SmartCategorization: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// DefaultCategories seeds a new account. Ids and owner are filled in by the caller.
func DefaultCategories() []CategoryInput {
	return []CategoryInput{
		{Name: "Salary", Icon: "💼", Type: Income, Color: "#22C55E"},
		{Name: "Freelance", Icon: "💻", Type: Income, Color: "#10B981"},
		{Name: "Food & Dining", Icon: "🍽️", Type: Expense, Color: "#F97316"},
		{Name: "Transport", Icon: "🚌", Type: Expense, Color: "#3B82F6"},
		{Name: "Shopping", Icon: "🛍️", Type: Expense, Color: "#EC4899"},
		{Name: "Bills & Utilities", Icon: "💡", Type: Expense, Color: "#EAB308"},
		{Name: "Health", Icon: "🩺", Type: Expense, Color: "#EF4444"},
		{Name: "Entertainment", Icon: "🎬", Type: Expense, Color: "#8B5CF6"},
	}
}
