// Package memory is an in-process storage.Store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage"
)

type Store struct {
	mu            sync.Mutex
	users         map[string]core.User
	usernames     map[string]string
	categories    map[string]core.Category
	transactions  map[string]core.Transaction
	budgets       map[string]core.Budget
	goals         map[string]core.Goal
	notifications map[string]core.Notification
	settings      map[string]core.AppSettings // by user id
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:         map[string]core.User{},
		usernames:     map[string]string{},
		categories:    map[string]core.Category{},
		transactions:  map[string]core.Transaction{},
		budgets:       map[string]core.Budget{},
		goals:         map[string]core.Goal{},
		notifications: map[string]core.Notification{},
		settings:      map[string]core.AppSettings{},
	}
}

func (s *Store) Close() error { return nil }

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
}

func (s *Store) requireUser(id string) error {
	if _, ok := s.users[id]; !ok {
		return notFound("user", id)
	}
	return nil
}

func (s *Store) CreateAccount(_ context.Context, u core.User, st core.AppSettings, cats []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, storage.ErrConflict)
	}
	if _, ok := s.usernames[u.Username]; ok {
		return fmt.Errorf("username %q: %w", u.Username, storage.ErrConflict)
	}
	if _, ok := s.settings[st.UserID]; ok {
		return fmt.Errorf("settings of %s: %w", st.UserID, storage.ErrConflict)
	}
	for _, c := range cats {
		if _, ok := s.categories[c.ID]; ok {
			return fmt.Errorf("category %s: %w", c.ID, storage.ErrConflict)
		}
	}
	s.users[u.ID] = u
	s.usernames[u.Username] = u.ID
	s.settings[st.UserID] = st
	for _, c := range cats {
		s.categories[c.ID] = c
	}
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, notFound("user", id)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usernames[username]
	if !ok {
		return core.User{}, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
	}
	return s.users[id], nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUser(c.UserID); err != nil {
		return err
	}
	if _, ok := s.categories[c.ID]; ok {
		return fmt.Errorf("category %s: %w", c.ID, storage.ErrConflict)
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, notFound("category", id)
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Category{}
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Name < b.Name
	})
	return out, nil
}

func copyTransaction(t core.Transaction) core.Transaction {
	t.Tags = append([]string{}, t.Tags...)
	if t.RecurringPattern != nil {
		p := *t.RecurringPattern
		t.RecurringPattern = &p
	}
	return t
}

func copyNotification(n core.Notification) core.Notification {
	if n.Data != nil {
		n.Data = maps.Clone(n.Data)
	}
	return n
}

func (s *Store) RecordTransaction(_ context.Context, t core.Transaction, spent []storage.SpentIncrement, notes []core.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUser(t.UserID); err != nil {
		return err
	}
	if _, ok := s.categories[t.CategoryID]; !ok {
		return notFound("category", t.CategoryID)
	}
	if _, ok := s.transactions[t.ID]; ok {
		return fmt.Errorf("transaction %s: %w", t.ID, storage.ErrConflict)
	}
	for _, inc := range spent {
		if _, ok := s.budgets[inc.BudgetID]; !ok {
			return notFound("budget", inc.BudgetID)
		}
	}
	for _, n := range notes {
		if _, ok := s.notifications[n.ID]; ok {
			return fmt.Errorf("notification %s: %w", n.ID, storage.ErrConflict)
		}
	}

	s.transactions[t.ID] = copyTransaction(t)
	for _, inc := range spent {
		b := s.budgets[inc.BudgetID]
		b.Spent = b.Spent.Add(inc.Delta)
		b.UpdatedAt = t.UpdatedAt
		s.budgets[inc.BudgetID] = b
	}
	for _, n := range notes {
		s.notifications[n.ID] = copyNotification(n)
	}
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, notFound("transaction", id)
	}
	return copyTransaction(t), nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, r core.DateRange) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Transaction{}
	for _, t := range s.transactions {
		if t.UserID == userID && r.Contains(t.Date) {
			out = append(out, copyTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUser(b.UserID); err != nil {
		return err
	}
	if _, ok := s.categories[b.CategoryID]; !ok {
		return notFound("category", b.CategoryID)
	}
	if _, ok := s.budgets[b.ID]; ok {
		return fmt.Errorf("budget %s: %w", b.ID, storage.ErrConflict)
	}
	s.budgets[b.ID] = b
	return nil
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, notFound("budget", id)
	}
	return b, nil
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Budget{}
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ResetBudgetSpent(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return notFound("budget", id)
	}
	b.Spent = core.Money{}
	b.UpdatedAt = at
	s.budgets[id] = b
	return nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUser(g.UserID); err != nil {
		return err
	}
	if _, ok := s.goals[g.ID]; ok {
		return fmt.Errorf("goal %s: %w", g.ID, storage.ErrConflict)
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, notFound("goal", id)
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TargetDate.Equal(out[j].TargetDate) {
			return out[i].TargetDate.Before(out[j].TargetDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AddGoalContribution(_ context.Context, goalID string, amount core.Money, at time.Time, build storage.GoalNotifier) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before, ok := s.goals[goalID]
	if !ok {
		return core.Goal{}, notFound("goal", goalID)
	}
	after := before
	after.CurrentAmount = before.CurrentAmount.Add(amount)
	after.UpdatedAt = at

	var notes []core.Notification
	if build != nil {
		var err error
		if notes, err = build(before, after); err != nil {
			return core.Goal{}, err
		}
	}
	for _, n := range notes {
		if _, ok := s.notifications[n.ID]; ok {
			return core.Goal{}, fmt.Errorf("notification %s: %w", n.ID, storage.ErrConflict)
		}
	}
	s.goals[goalID] = after
	for _, n := range notes {
		s.notifications[n.ID] = copyNotification(n)
	}
	return after, nil
}

func (s *Store) CreateNotification(_ context.Context, n core.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUser(n.UserID); err != nil {
		return err
	}
	if _, ok := s.notifications[n.ID]; ok {
		return fmt.Errorf("notification %s: %w", n.ID, storage.ErrConflict)
	}
	s.notifications[n.ID] = copyNotification(n)
	return nil
}

func (s *Store) GetNotification(_ context.Context, id string) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return core.Notification{}, notFound("notification", id)
	}
	return copyNotification(n), nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Notification{}
	for _, n := range s.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, copyNotification(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return notFound("notification", id)
	}
	n.IsRead = true
	s.notifications[id] = n
	return nil
}

func (s *Store) GetSettings(_ context.Context, userID string) (core.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[userID]
	if !ok {
		return core.AppSettings{}, notFound("settings of", userID)
	}
	return st, nil
}

func (s *Store) UpdateSettings(_ context.Context, st core.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.settings[st.UserID]
	if !ok {
		return notFound("settings of", st.UserID)
	}
	st.ID = cur.ID
	st.CreatedAt = cur.CreatedAt
	s.settings[st.UserID] = st
	return nil
}

func (s *Store) SetBiometric(_ context.Context, userID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	u.BiometricEnabled = enabled
	s.users[userID] = u
	return nil
}

func (s *Store) SetPIN(_ context.Context, userID, pinHash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	st, ok := s.settings[userID]
	if !ok {
		return notFound("settings of", userID)
	}
	u.PINHash = pinHash
	st.PINHash = pinHash
	st.AppLockEnabled = true
	st.UpdatedAt = at
	s.users[userID] = u
	s.settings[userID] = st
	return nil
}
