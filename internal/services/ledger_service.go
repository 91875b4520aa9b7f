// Package services orchestrates validation, derived-state rules, storage
// and event publishing for the ledger.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/recipereverie-droid/Budget-Tracker/internal/auth"
	"github.com/recipereverie-droid/Budget-Tracker/internal/cache"
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/log"
	"github.com/recipereverie-droid/Budget-Tracker/internal/rules"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage"
	"github.com/recipereverie-droid/Budget-Tracker/internal/validation"
)

// EventPublisher hands stored records to the event bus.
type EventPublisher interface {
	PublishNotification(ctx context.Context, n core.Notification) error
	PublishTransactionRecorded(ctx context.Context, t core.Transaction) error
}

// LedgerService is the write path of the tracker. Records are stored first;
// publishing happens afterwards and never fails a request.
type LedgerService struct {
	store     storage.Store
	publisher EventPublisher
	ids       core.IDGenerator
	now       func() time.Time
	hasher    auth.Hasher
	settings  cache.Cache[core.AppSettings]
	logger    *log.Logger
}

type Option func(*LedgerService)

func WithIDGenerator(ids core.IDGenerator) Option {
	return func(s *LedgerService) { s.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithSettingsCache caches settings per user id.
func WithSettingsCache(c cache.Cache[core.AppSettings]) Option {
	return func(s *LedgerService) { s.settings = c }
}

func WithPasswordHasher(h auth.Hasher) Option {
	return func(s *LedgerService) { s.hasher = h }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

// NewLedgerService builds the service. publisher may be nil.
func NewLedgerService(store storage.Store, publisher EventPublisher, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     store,
		publisher: publisher,
		ids:       core.NewUUID,
		now:       time.Now,
		hasher:    auth.Bcrypt{},
		logger:    log.New(log.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	return s
}

func (s *LedgerService) clock() time.Time {
	return s.now().UTC()
}

// RegisterUser creates an account with default settings and the default categories.
func (s *LedgerService) RegisterUser(ctx context.Context, raw map[string]any) (core.User, error) {
	in, err := validation.User(raw)
	if err != nil {
		return core.User{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock()
	u := core.NewUser(s.ids(), in.Username, hash, now)
	st := core.DefaultSettings(s.ids(), u.ID, now)
	defaults := core.DefaultCategories()
	cats := make([]core.Category, len(defaults))
	for i, c := range defaults {
		cats[i] = c.Build(s.ids(), u.ID, now)
		cats[i].IsDefault = true
	}

	if err := s.store.CreateAccount(ctx, u, st, cats); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			verr := &core.ValidationError{}
			verr.Add("username", "Username is already taken")
			return core.User{}, verr
		}
		return core.User{}, fmt.Errorf("create account: %w", err)
	}
	s.cacheSettings(st)

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID, "categories", len(cats))
	return u, nil
}

// VerifyPassword checks a username and password pair.
func (s *LedgerService) VerifyPassword(ctx context.Context, username, password string) (core.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.User{}, auth.ErrMismatch
		}
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (s *LedgerService) requireUser(ctx context.Context, userID string) error {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &core.ReferenceError{Entity: "user", ID: userID, Reason: "not found"}
		}
		return fmt.Errorf("load user: %w", err)
	}
	return nil
}

func (s *LedgerService) loadCategory(ctx context.Context, id string) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Category{}, &core.ReferenceError{Entity: "category", ID: id, Reason: "not found"}
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("load category: %w", err)
	}
	return c, nil
}

func (s *LedgerService) CreateCategory(ctx context.Context, userID string, raw map[string]any) (core.Category, error) {
	in, err := validation.Category(raw)
	if err != nil {
		return core.Category{}, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return core.Category{}, err
	}
	c := in.Build(s.ids(), userID, s.clock())
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *LedgerService) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

// RecordedTransaction is a stored transaction with the alerts it raised.
type RecordedTransaction struct {
	Transaction   core.Transaction
	Notifications []core.Notification
}

// RecordTransaction validates and stores a transaction, adds it to the
// spent amount of every budget whose current window it falls in, and
// raises a budget alert for each budget that crossed its threshold.
func (s *LedgerService) RecordTransaction(ctx context.Context, userID string, raw map[string]any) (RecordedTransaction, error) {
	in, err := validation.Transaction(raw)
	if err != nil {
		return RecordedTransaction{}, err
	}
	cat, err := s.loadCategory(ctx, in.CategoryID)
	if err != nil {
		return RecordedTransaction{}, err
	}
	if err := validation.CheckTransactionCategory(userID, in, cat); err != nil {
		return RecordedTransaction{}, err
	}
	settings, err := s.userSettings(ctx, userID)
	if err != nil {
		return RecordedTransaction{}, err
	}

	now := s.clock()
	txn := in.Build(s.ids(), userID, now)

	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return RecordedTransaction{}, fmt.Errorf("list budgets: %w", err)
	}
	var (
		increments []storage.SpentIncrement
		notes      []core.Notification
	)
	for _, b := range budgets {
		window, err := rules.CurrentWindow(b.Period, now)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping budget with unknown period", log.FieldBudgetID, b.ID, log.FieldError, err)
			continue
		}
		if b.UserID != userID || !rules.Counts(b, txn, window) {
			continue
		}
		after := b
		after.Spent = rules.AccumulateSpent(b, txn, window)
		increments = append(increments, storage.SpentIncrement{BudgetID: b.ID, Delta: txn.Amount})

		crossed, err := rules.BudgetAlertCrossed(b, after)
		if err != nil {
			s.logger.WarnContext(ctx, "Cannot evaluate budget alert", log.FieldBudgetID, b.ID, log.FieldError, err)
			continue
		}
		if crossed && settings.BudgetAlerts {
			n, err := s.budgetAlert(after, cat, txn, settings.Currency, now)
			if err != nil {
				return RecordedTransaction{}, err
			}
			notes = append(notes, n)
		}
	}

	if err := s.store.RecordTransaction(ctx, txn, increments, notes); err != nil {
		return RecordedTransaction{}, fmt.Errorf("record transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().WithTransaction(txn).WithOperation(log.OpRecord).ToSlice()...)

	s.publishNotifications(ctx, notes)
	if settings.AutoBackup {
		s.publishTransaction(ctx, txn)
	}
	return RecordedTransaction{Transaction: txn, Notifications: notes}, nil
}

func (s *LedgerService) Transactions(ctx context.Context, userID string, r core.DateRange) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, r)
}

func (s *LedgerService) CreateGoal(ctx context.Context, userID string, raw map[string]any) (core.Goal, error) {
	in, err := validation.Goal(raw)
	if err != nil {
		return core.Goal{}, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return core.Goal{}, err
	}
	g := in.Build(s.ids(), userID, s.clock())
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

// GoalContribution is a goal after a contribution, with its progress and
// the milestone notification it raised, if any.
type GoalContribution struct {
	Goal         core.Goal
	Progress     decimal.Decimal
	Notification *core.Notification
}

// ContributeToGoal adds an amount to a goal's current amount.
func (s *LedgerService) ContributeToGoal(ctx context.Context, userID, goalID string, raw map[string]any) (GoalContribution, error) {
	amount, err := validation.Contribution(raw)
	if err != nil {
		return GoalContribution{}, err
	}
	g, err := s.store.GetGoal(ctx, goalID)
	if errors.Is(err, storage.ErrNotFound) {
		return GoalContribution{}, &core.ReferenceError{Entity: "goal", ID: goalID, Reason: "not found"}
	}
	if err != nil {
		return GoalContribution{}, fmt.Errorf("load goal: %w", err)
	}
	if err := validation.CheckOwner("goal", g.ID, g.UserID, userID); err != nil {
		return GoalContribution{}, err
	}
	if !g.IsActive {
		return GoalContribution{}, &core.ReferenceError{Entity: "goal", ID: g.ID, Reason: "is not active"}
	}

	if g.CurrentAmount.Add(amount).Cents > core.MaxAmountCents {
		verr := &core.ValidationError{}
		verr.Add("amount", "goal amount would exceed 9999999999.99")
		return GoalContribution{}, verr
	}
	settings, err := s.userSettings(ctx, userID)
	if err != nil {
		return GoalContribution{}, err
	}

	// the milestone is decided against the amounts the store increments, not
	// the copy read above
	now := s.clock()
	var notes []core.Notification
	build := func(before, after core.Goal) ([]core.Notification, error) {
		notes = nil
		if m, ok := rules.GoalMilestone(before.CurrentAmount, after.CurrentAmount, after.TargetAmount); ok && settings.GoalMilestones {
			notes = append(notes, s.goalMilestone(after, m, settings.Currency, now))
		}
		return notes, nil
	}
	g, err = s.store.AddGoalContribution(ctx, g.ID, amount, now, build)
	if errors.Is(err, storage.ErrNotFound) {
		return GoalContribution{}, &core.ReferenceError{Entity: "goal", ID: goalID, Reason: "not found"}
	}
	if err != nil {
		return GoalContribution{}, fmt.Errorf("save goal progress: %w", err)
	}
	s.publishNotifications(ctx, notes)

	progress, err := rules.GoalProgress(g)
	if err != nil {
		return GoalContribution{}, err
	}
	out := GoalContribution{Goal: g, Progress: progress}
	if len(notes) > 0 {
		out.Notification = &notes[0]
	}
	return out, nil
}

func (s *LedgerService) Goals(ctx context.Context, userID string) ([]core.Goal, error) {
	return s.store.ListGoals(ctx, userID)
}

func (s *LedgerService) CreateBudget(ctx context.Context, userID string, raw map[string]any) (core.Budget, error) {
	in, err := validation.Budget(raw)
	if err != nil {
		return core.Budget{}, err
	}
	cat, err := s.loadCategory(ctx, in.CategoryID)
	if err != nil {
		return core.Budget{}, err
	}
	if err := validation.CheckBudgetCategory(userID, in, cat); err != nil {
		return core.Budget{}, err
	}
	b := in.Build(s.ids(), userID, s.clock())
	if err := s.store.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

// BudgetStatus returns every budget of the user with its utilization.
func (s *LedgerService) BudgetStatus(ctx context.Context, userID string) ([]core.BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		st, err := rules.Status(b)
		if err != nil {
			return nil, fmt.Errorf("budget %s: %w", b.ID, err)
		}
		out = append(out, st)
	}
	return out, nil
}

// ResetBudget zeroes a budget's spent amount at the start of a new period.
func (s *LedgerService) ResetBudget(ctx context.Context, userID, budgetID string) error {
	b, err := s.store.GetBudget(ctx, budgetID)
	if errors.Is(err, storage.ErrNotFound) {
		return &core.ReferenceError{Entity: "budget", ID: budgetID, Reason: "not found"}
	}
	if err != nil {
		return fmt.Errorf("load budget: %w", err)
	}
	if err := validation.CheckOwner("budget", b.ID, b.UserID, userID); err != nil {
		return err
	}
	return s.store.ResetBudgetSpent(ctx, b.ID, s.clock())
}

// UpdateSettings applies a partial update. The PIN is set through
// SetAppLockPIN, and the app lock cannot be enabled before a PIN exists.
func (s *LedgerService) UpdateSettings(ctx context.Context, userID string, raw map[string]any) (core.AppSettings, error) {
	u, err := validation.SettingsUpdate(raw)
	if err != nil {
		return core.AppSettings{}, err
	}
	current, err := s.userSettings(ctx, userID)
	if err != nil {
		return core.AppSettings{}, err
	}

	verr := &core.ValidationError{}
	if u.PINHash != nil {
		verr.Add("pinHash", "pinHash cannot be updated directly")
	}
	if u.AppLockEnabled != nil && *u.AppLockEnabled && current.PINHash == "" {
		verr.Add("appLockEnabled", "set a PIN before enabling the app lock")
	}
	if err := verr.Err(); err != nil {
		return core.AppSettings{}, err
	}
	if u.IsEmpty() {
		return current, nil
	}

	updated := u.Apply(current, s.clock())
	if err := s.store.UpdateSettings(ctx, updated); err != nil {
		return core.AppSettings{}, fmt.Errorf("update settings: %w", err)
	}
	s.cacheSettings(updated)
	return updated, nil
}

func (s *LedgerService) Settings(ctx context.Context, userID string) (core.AppSettings, error) {
	return s.userSettings(ctx, userID)
}

// SetAppLockPIN stores a 4 to 6 digit PIN and enables the app lock.
func (s *LedgerService) SetAppLockPIN(ctx context.Context, userID, pin string) error {
	if err := auth.ValidatePIN(pin); err != nil {
		verr := &core.ValidationError{}
		verr.Add("pin", err.Error())
		return verr
	}
	hash, err := s.hasher.Hash(pin)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	if err := s.store.SetPIN(ctx, userID, hash, s.clock()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &core.ReferenceError{Entity: "user", ID: userID, Reason: "not found"}
		}
		return fmt.Errorf("set pin: %w", err)
	}
	if s.settings != nil {
		s.settings.Delete(userID)
	}
	return nil
}

// SetBiometric turns biometric unlock on or off. Biometric unlock opens the
// app lock, so it can only be turned on while the app lock is enabled.
func (s *LedgerService) SetBiometric(ctx context.Context, userID string, enabled bool) error {
	if enabled {
		st, err := s.userSettings(ctx, userID)
		if err != nil {
			return err
		}
		if !st.AppLockEnabled {
			verr := &core.ValidationError{}
			verr.Add("biometricEnabled", "enable the app lock before biometric unlock")
			return verr
		}
	}
	if err := s.store.SetBiometric(ctx, userID, enabled); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &core.ReferenceError{Entity: "user", ID: userID, Reason: "not found"}
		}
		return fmt.Errorf("set biometric: %w", err)
	}
	s.logger.InfoContext(ctx, "Biometric unlock changed", log.FieldUserID, userID, "enabled", enabled)
	return nil
}

// VerifyPIN checks pin against the stored app-lock PIN.
func (s *LedgerService) VerifyPIN(ctx context.Context, userID, pin string) error {
	st, err := s.userSettings(ctx, userID)
	if err != nil {
		return err
	}
	if st.PINHash == "" {
		return auth.ErrMismatch
	}
	return s.hasher.Verify(st.PINHash, pin)
}

// DailySummary totals the user's transactions on the calendar day of day
// and, when the user opted in, stores a daily_summary notification.
func (s *LedgerService) DailySummary(ctx context.Context, userID string, day time.Time) (core.DaySummary, *core.Notification, error) {
	settings, err := s.userSettings(ctx, userID)
	if err != nil {
		return core.DaySummary{}, nil, err
	}
	window := rules.DayWindow{}.Window(day.UTC())
	txns, err := s.store.ListTransactions(ctx, userID, window)
	if err != nil {
		return core.DaySummary{}, nil, fmt.Errorf("list transactions: %w", err)
	}
	summary := rules.SummarizeDay(txns, window)
	if !settings.DailySummary {
		return summary, nil, nil
	}

	n := s.dailySummary(userID, summary, settings.Currency, s.clock())
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return core.DaySummary{}, nil, fmt.Errorf("store summary: %w", err)
	}
	s.publishNotifications(ctx, []core.Notification{n})
	return summary, &n, nil
}

func (s *LedgerService) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]core.Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly)
}

func (s *LedgerService) MarkNotificationRead(ctx context.Context, userID, id string) error {
	n, err := s.store.GetNotification(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return &core.ReferenceError{Entity: "notification", ID: id, Reason: "not found"}
	}
	if err != nil {
		return fmt.Errorf("load notification: %w", err)
	}
	if err := validation.CheckOwner("notification", n.ID, n.UserID, userID); err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return s.store.MarkNotificationRead(ctx, id)
}

func (s *LedgerService) userSettings(ctx context.Context, userID string) (core.AppSettings, error) {
	load := func() (core.AppSettings, error) {
		st, err := s.store.GetSettings(ctx, userID)
		if errors.Is(err, storage.ErrNotFound) {
			return core.AppSettings{}, &core.ReferenceError{Entity: "user", ID: userID, Reason: "has no settings"}
		}
		if err != nil {
			return core.AppSettings{}, fmt.Errorf("load settings: %w", err)
		}
		return st, nil
	}
	if s.settings == nil {
		return load()
	}
	return s.settings.GetOrLoad(userID, load)
}

func (s *LedgerService) cacheSettings(st core.AppSettings) {
	if s.settings != nil {
		s.settings.Set(st.UserID, st)
	}
}

func (s *LedgerService) publishNotifications(ctx context.Context, notes []core.Notification) {
	if len(notes) == 0 {
		return
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher, notifications stored only", "count", len(notes))
		return
	}
	for _, n := range notes {
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish notification",
				log.FieldNotificationID, n.ID, log.FieldUserID, n.UserID, log.FieldError, err)
		}
	}
}

func (s *LedgerService) publishTransaction(ctx context.Context, t core.Transaction) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "Auto backup is on but no event publisher is configured", log.FieldUserID, t.UserID)
		return
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, t); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction for backup",
			log.FieldTransactionID, t.ID, log.FieldError, err)
	}
}

// Close closes the store and, when it holds one, the publisher's connection.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
