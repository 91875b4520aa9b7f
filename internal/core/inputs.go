package core

import (
	"strings"
	"time"
)

// Insertable subsets: the fields a caller may supply when creating an entity.
type (
	UserInput struct {
		Username string
		Password string
	}

	CategoryInput struct {
		Name  string
		Icon  string
		Type  EntryType
		Color string
	}

	TransactionInput struct {
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
	}

	GoalInput struct {
		Name         string
		Description  string
		TargetAmount Money
		TargetDate   time.Time
		Emoji        string
		Color        string
	}

	BudgetInput struct {
		CategoryID     string
		Amount         Money
		Period         Period
		AlertThreshold int
	}

	// SettingsUpdate holds only the fields present in the request.
	SettingsUpdate struct {
		Theme               *Theme
		Language            *Language
		Currency            *string
		AppLockEnabled      *bool
		PINHash             *string
		DataEncryption      *bool
		BudgetAlerts        *bool
		GoalMilestones      *bool
		DailySummary        *bool
		AutoBackup          *bool
		SmartCategorization *bool
		LocationTracking    *bool
	}
)

// NewUser builds a user record; the password must already be hashed.
func NewUser(id, username, passwordHash string, now time.Time) User {
	return User{
		ID:           id,
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
}

func (in CategoryInput) Build(id, userID string, now time.Time) Category {
	return Category{
		ID:        id,
		UserID:    userID,
		Name:      in.Name,
		Icon:      in.Icon,
		Type:      in.Type,
		Color:     in.Color,
		CreatedAt: now,
	}
}

func (in TransactionInput) Build(id, userID string, now time.Time) Transaction {
	var pattern *RecurringPattern
	if in.RecurringPattern != nil {
		p := *in.RecurringPattern
		pattern = &p
	}
	return Transaction{
		ID:               id,
		UserID:           userID,
		CategoryID:       in.CategoryID,
		Amount:           in.Amount,
		Description:      in.Description,
		Type:             in.Type,
		PaymentMethod:    in.PaymentMethod,
		Date:             in.Date,
		Location:         in.Location,
		ReceiptURL:       in.ReceiptURL,
		IsRecurring:      in.IsRecurring,
		RecurringPattern: pattern,
		Tags:             append([]string(nil), in.Tags...),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (in GoalInput) Build(id, userID string, now time.Time) Goal {
	g := Goal{
		ID:           id,
		UserID:       userID,
		Name:         in.Name,
		Description:  in.Description,
		TargetAmount: in.TargetAmount,
		TargetDate:   in.TargetDate,
		Emoji:        in.Emoji,
		Color:        in.Color,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if g.Emoji == "" {
		g.Emoji = DefaultGoalEmoji
	}
	if g.Color == "" {
		g.Color = DefaultGoalColor
	}
	return g
}

func (in BudgetInput) Build(id, userID string, now time.Time) Budget {
	threshold := in.AlertThreshold
	if threshold == 0 {
		threshold = DefaultAlertThreshold
	}
	return Budget{
		ID:             id,
		UserID:         userID,
		CategoryID:     in.CategoryID,
		Amount:         in.Amount,
		Period:         in.Period,
		AlertThreshold: threshold,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsEmpty reports whether the update carries no fields.
func (u SettingsUpdate) IsEmpty() bool {
	return u == SettingsUpdate{}
}

// Apply returns a copy of s with the present fields overwritten.
func (u SettingsUpdate) Apply(s AppSettings, now time.Time) AppSettings {
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	if u.Language != nil {
		s.Language = *u.Language
	}
	if u.Currency != nil {
		s.Currency = *u.Currency
	}
	if u.AppLockEnabled != nil {
		s.AppLockEnabled = *u.AppLockEnabled
	}
	if u.PINHash != nil {
		s.PINHash = *u.PINHash
	}
	if u.DataEncryption != nil {
		s.DataEncryption = *u.DataEncryption
	}
	if u.BudgetAlerts != nil {
		s.BudgetAlerts = *u.BudgetAlerts
	}
	if u.GoalMilestones != nil {
		s.GoalMilestones = *u.GoalMilestones
	}
	if u.DailySummary != nil {
		s.DailySummary = *u.DailySummary
	}
	if u.AutoBackup != nil {
		s.AutoBackup = *u.AutoBackup
	}
	if u.SmartCategorization != nil {
		s.SmartCategorization = *u.SmartCategorization
	}
	if u.LocationTracking != nil {
		s.LocationTracking = *u.LocationTracking
	}
	s.UpdatedAt = now
	return s
}
