package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage"
)

const (
	transactionColumns = `id, user_id, category_id, amount_cents, description, type, payment_method,
		date, location, receipt_url, is_recurring, recurring_pattern, tags, created_at, updated_at`
	budgetColumns = `id, user_id, category_id, amount_cents, period, spent_cents, alert_threshold,
		created_at, updated_at`
	goalColumns = `id, user_id, name, description, target_amount_cents, current_amount_cents,
		target_date, emoji, color, is_active, created_at, updated_at`
	notificationColumns = `id, user_id, type, title, message, data, is_read, created_at`
)

const insertNotification = `INSERT INTO notifications (` + notificationColumns + `)
	VALUES (:id, :user_id, :type, :title, :message, :data, :is_read, :created_at)`

func (s *Store) RecordTransaction(ctx context.Context, t core.Transaction, spent []storage.SpentIncrement, notes []core.Notification) error {
	row, err := newTransactionRow(t)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
			VALUES (:id, :user_id, :category_id, :amount_cents, :description, :type, :payment_method,
				:date, :location, :receipt_url, :is_recurring, :recurring_pattern, :tags, :created_at, :updated_at)`, row); err != nil {
			return fmt.Errorf("insert transaction: %w", mapError(err))
		}
		for _, inc := range spent {
			res, err := tx.ExecContext(ctx,
				s.q(`UPDATE budgets SET spent_cents = spent_cents + ?, updated_at = ? WHERE id = ?`),
				inc.Delta.Cents, row.UpdatedAt, inc.BudgetID)
			if err != nil {
				return fmt.Errorf("update budget spent: %w", err)
			}
			if err := expectOne(res, "budget", inc.BudgetID); err != nil {
				return err
			}
		}
		return insertNotifications(ctx, tx, notes)
	})
}

func insertNotifications(ctx context.Context, tx *sqlx.Tx, notes []core.Notification) error {
	for _, n := range notes {
		r, err := newNotificationRow(n)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insertNotification, r); err != nil {
			return fmt.Errorf("insert notification: %w", mapError(err))
		}
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var r transactionRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return r.toCore()
}

func (s *Store) ListTransactions(ctx context.Context, userID string, dr core.DateRange) ([]core.Transaction, error) {
	var rows []transactionRow
	if err := s.db.SelectContext(ctx, &rows,
		s.q(`SELECT `+transactionColumns+` FROM transactions
			WHERE user_id = ? AND date >= ? AND date < ?
			ORDER BY date, created_at`),
		userID, dr.Start.UTC(), dr.End.UTC()); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) CreateBudget(ctx context.Context, b core.Budget) error {
	row := budgetRow{
		ID:             b.ID,
		UserID:         b.UserID,
		CategoryID:     b.CategoryID,
		AmountCents:    b.Amount.Cents,
		Period:         string(b.Period),
		SpentCents:     b.Spent.Cents,
		AlertThreshold: b.AlertThreshold,
		CreatedAt:      b.CreatedAt.UTC(),
		UpdatedAt:      b.UpdatedAt.UTC(),
	}
	if _, err := s.db.NamedExecContext(ctx, `INSERT INTO budgets (`+budgetColumns+`)
		VALUES (:id, :user_id, :category_id, :amount_cents, :period, :spent_cents, :alert_threshold,
			:created_at, :updated_at)`, row); err != nil {
		return fmt.Errorf("insert budget: %w", mapError(err))
	}
	return nil
}

func (s *Store) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	var r budgetRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return r.toCore(), nil
}

func (s *Store) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	var rows []budgetRow
	if err := s.db.SelectContext(ctx, &rows,
		s.q(`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY created_at, id`), userID); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}

func (s *Store) ResetBudgetSpent(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE budgets SET spent_cents = 0, updated_at = ? WHERE id = ?`), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("reset budget: %w", err)
	}
	return expectOne(res, "budget", id)
}

func (s *Store) CreateGoal(ctx context.Context, g core.Goal) error {
	row := goalRow{
		ID:                 g.ID,
		UserID:             g.UserID,
		Name:               g.Name,
		Description:        g.Description,
		TargetAmountCents:  g.TargetAmount.Cents,
		CurrentAmountCents: g.CurrentAmount.Cents,
		TargetDate:         g.TargetDate.UTC(),
		Emoji:              g.Emoji,
		Color:              g.Color,
		IsActive:           g.IsActive,
		CreatedAt:          g.CreatedAt.UTC(),
		UpdatedAt:          g.UpdatedAt.UTC(),
	}
	if _, err := s.db.NamedExecContext(ctx, `INSERT INTO goals (`+goalColumns+`)
		VALUES (:id, :user_id, :name, :description, :target_amount_cents, :current_amount_cents,
			:target_date, :emoji, :color, :is_active, :created_at, :updated_at)`, row); err != nil {
		return fmt.Errorf("insert goal: %w", mapError(err))
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	var r goalRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+goalColumns+` FROM goals WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return r.toCore(), nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	var rows []goalRow
	if err := s.db.SelectContext(ctx, &rows,
		s.q(`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY target_date, id`), userID); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}

func (s *Store) AddGoalContribution(ctx context.Context, goalID string, amount core.Money, at time.Time, build storage.GoalNotifier) (core.Goal, error) {
	var after core.Goal
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.q(`UPDATE goals SET current_amount_cents = current_amount_cents + ?, updated_at = ? WHERE id = ?`),
			amount.Cents, at.UTC(), goalID)
		if err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		if err := expectOne(res, "goal", goalID); err != nil {
			return err
		}

		var r goalRow
		if err := tx.GetContext(ctx, &r, s.q(`SELECT `+goalColumns+` FROM goals WHERE id = ?`), goalID); err != nil {
			return fmt.Errorf("reload goal: %w", err)
		}
		after = r.toCore()
		if build == nil {
			return nil
		}
		before := after
		before.CurrentAmount = core.Money{Cents: after.CurrentAmount.Cents - amount.Cents}
		notes, err := build(before, after)
		if err != nil {
			return err
		}
		return insertNotifications(ctx, tx, notes)
	})
	if err != nil {
		return core.Goal{}, err
	}
	return after, nil
}

func newNotificationRow(n core.Notification) (notificationRow, error) {
	data, err := marshalData(n.Data)
	if err != nil {
		return notificationRow{}, err
	}
	return notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Data:      data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC(),
	}, nil
}

func (s *Store) CreateNotification(ctx context.Context, n core.Notification) error {
	r, err := newNotificationRow(n)
	if err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, insertNotification, r); err != nil {
		return fmt.Errorf("insert notification: %w", mapError(err))
	}
	return nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (core.Notification, error) {
	var r notificationRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Notification{}, fmt.Errorf("notification %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return r.toCore()
}

// ListNotifications returns newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]core.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if unreadOnly {
		query += ` AND is_read = ?`
		args = append(args, false)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]core.Notification, 0, len(rows))
	for _, r := range rows {
		n, err := r.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE notifications SET is_read = ? WHERE id = ?`), true, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return expectOne(res, "notification", id)
}
