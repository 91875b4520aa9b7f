package sqlstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

type userRow struct {
	ID               string    `db:"id"`
	Username         string    `db:"username"`
	PasswordHash     string    `db:"password_hash"`
	PINHash          string    `db:"pin_hash"`
	BiometricEnabled bool      `db:"biometric_enabled"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r userRow) toCore() core.User {
	return core.User{
		ID:               r.ID,
		Username:         r.Username,
		PasswordHash:     r.PasswordHash,
		PINHash:          r.PINHash,
		BiometricEnabled: r.BiometricEnabled,
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

type categoryRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Icon      string    `db:"icon"`
	Type      string    `db:"type"`
	Color     string    `db:"color"`
	IsDefault bool      `db:"is_default"`
	CreatedAt time.Time `db:"created_at"`
}

func (r categoryRow) toCore() core.Category {
	return core.Category{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Icon:      r.Icon,
		Type:      core.EntryType(r.Type),
		Color:     r.Color,
		IsDefault: r.IsDefault,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type transactionRow struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	CategoryID       string    `db:"category_id"`
	AmountCents      int64     `db:"amount_cents"`
	Description      string    `db:"description"`
	Type             string    `db:"type"`
	PaymentMethod    string    `db:"payment_method"`
	Date             time.Time `db:"date"`
	Location         string    `db:"location"`
	ReceiptURL       string    `db:"receipt_url"`
	IsRecurring      bool      `db:"is_recurring"`
	RecurringPattern string    `db:"recurring_pattern"`
	Tags             string    `db:"tags"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func newTransactionRow(t core.Transaction) (transactionRow, error) {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return transactionRow{}, fmt.Errorf("marshal tags: %w", err)
	}
	var pattern string
	if t.RecurringPattern != nil {
		p := *t.RecurringPattern
		p.EndDate = p.EndDate.UTC()
		b, err := json.Marshal(p)
		if err != nil {
			return transactionRow{}, fmt.Errorf("marshal recurring pattern: %w", err)
		}
		pattern = string(b)
	}
	return transactionRow{
		ID:               t.ID,
		UserID:           t.UserID,
		CategoryID:       t.CategoryID,
		AmountCents:      t.Amount.Cents,
		Description:      t.Description,
		Type:             string(t.Type),
		PaymentMethod:    t.PaymentMethod,
		Date:             t.Date.UTC(),
		Location:         t.Location,
		ReceiptURL:       t.ReceiptURL,
		IsRecurring:      t.IsRecurring,
		RecurringPattern: pattern,
		Tags:             string(tagsJSON),
		CreatedAt:        t.CreatedAt.UTC(),
		UpdatedAt:        t.UpdatedAt.UTC(),
	}, nil
}

func (r transactionRow) toCore() (core.Transaction, error) {
	t := core.Transaction{
		ID:            r.ID,
		UserID:        r.UserID,
		CategoryID:    r.CategoryID,
		Amount:        core.Money{Cents: r.AmountCents},
		Description:   r.Description,
		Type:          core.EntryType(r.Type),
		PaymentMethod: r.PaymentMethod,
		Date:          r.Date.UTC(),
		Location:      r.Location,
		ReceiptURL:    r.ReceiptURL,
		IsRecurring:   r.IsRecurring,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.Tags), &t.Tags); err != nil {
		return core.Transaction{}, fmt.Errorf("unmarshal tags of %s: %w", r.ID, err)
	}
	if r.RecurringPattern != "" {
		var p core.RecurringPattern
		if err := json.Unmarshal([]byte(r.RecurringPattern), &p); err != nil {
			return core.Transaction{}, fmt.Errorf("unmarshal recurring pattern of %s: %w", r.ID, err)
		}
		p.EndDate = p.EndDate.UTC()
		t.RecurringPattern = &p
	}
	return t, nil
}

type budgetRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	CategoryID     string    `db:"category_id"`
	AmountCents    int64     `db:"amount_cents"`
	Period         string    `db:"period"`
	SpentCents     int64     `db:"spent_cents"`
	AlertThreshold int       `db:"alert_threshold"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r budgetRow) toCore() core.Budget {
	return core.Budget{
		ID:             r.ID,
		UserID:         r.UserID,
		CategoryID:     r.CategoryID,
		Amount:         core.Money{Cents: r.AmountCents},
		Period:         core.Period(r.Period),
		Spent:          core.Money{Cents: r.SpentCents},
		AlertThreshold: r.AlertThreshold,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

type goalRow struct {
	ID                 string    `db:"id"`
	UserID             string    `db:"user_id"`
	Name               string    `db:"name"`
	Description        string    `db:"description"`
	TargetAmountCents  int64     `db:"target_amount_cents"`
	CurrentAmountCents int64     `db:"current_amount_cents"`
	TargetDate         time.Time `db:"target_date"`
	Emoji              string    `db:"emoji"`
	Color              string    `db:"color"`
	IsActive           bool      `db:"is_active"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (r goalRow) toCore() core.Goal {
	return core.Goal{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Description:   r.Description,
		TargetAmount:  core.Money{Cents: r.TargetAmountCents},
		CurrentAmount: core.Money{Cents: r.CurrentAmountCents},
		TargetDate:    r.TargetDate.UTC(),
		Emoji:         r.Emoji,
		Color:         r.Color,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type notificationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Data      string    `db:"data"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

func (r notificationRow) toCore() (core.Notification, error) {
	n := core.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      core.NotificationType(r.Type),
		Title:     r.Title,
		Message:   r.Message,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.Data), &n.Data); err != nil {
		return core.Notification{}, fmt.Errorf("unmarshal data of %s: %w", r.ID, err)
	}
	return n, nil
}

func marshalData(data map[string]any) (string, error) {
	if data == nil {
		return "{}", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal notification data: %w", err)
	}
	return string(b), nil
}

type settingsRow struct {
	ID                  string    `db:"id"`
	UserID              string    `db:"user_id"`
	Theme               string    `db:"theme"`
	Language            string    `db:"language"`
	Currency            string    `db:"currency"`
	AppLockEnabled      bool      `db:"app_lock_enabled"`
	PINHash             string    `db:"pin_hash"`
	DataEncryption      bool      `db:"data_encryption"`
	BudgetAlerts        bool      `db:"budget_alerts"`
	GoalMilestones      bool      `db:"goal_milestones"`
	DailySummary        bool      `db:"daily_summary"`
	AutoBackup          bool      `db:"auto_backup"`
	SmartCategorization bool      `db:"smart_categorization"`
	LocationTracking    bool      `db:"location_tracking"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func newSettingsRow(s core.AppSettings) settingsRow {
	return settingsRow{
		ID:                  s.ID,
		UserID:              s.UserID,
		Theme:               string(s.Theme),
		Language:            string(s.Language),
		Currency:            s.Currency,
		AppLockEnabled:      s.AppLockEnabled,
		PINHash:             s.PINHash,
		DataEncryption:      s.DataEncryption,
		BudgetAlerts:        s.BudgetAlerts,
		GoalMilestones:      s.GoalMilestones,
		DailySummary:        s.DailySummary,
		AutoBackup:          s.AutoBackup,
		SmartCategorization: s.SmartCategorization,
		LocationTracking:    s.LocationTracking,
		CreatedAt:           s.CreatedAt.UTC(),
		UpdatedAt:           s.UpdatedAt.UTC(),
	}
}

func (r settingsRow) toCore() core.AppSettings {
	return core.AppSettings{
		ID:                  r.ID,
		UserID:              r.UserID,
		Theme:               core.Theme(r.Theme),
		Language:            core.Language(r.Language),
		Currency:            r.Currency,
		AppLockEnabled:      r.AppLockEnabled,
		PINHash:             r.PINHash,
		DataEncryption:      r.DataEncryption,
		BudgetAlerts:        r.BudgetAlerts,
		GoalMilestones:      r.GoalMilestones,
		DailySummary:        r.DailySummary,
		AutoBackup:          r.AutoBackup,
		SmartCategorization: r.SmartCategorization,
		LocationTracking:    r.LocationTracking,
		CreatedAt:           r.CreatedAt.UTC(),
		UpdatedAt:           r.UpdatedAt.UTC(),
	}
}
