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
	userColumns     = `id, username, password_hash, pin_hash, biometric_enabled, created_at`
	categoryColumns = `id, user_id, name, icon, type, color, is_default, created_at`
	settingsColumns = `id, user_id, theme, language, currency, app_lock_enabled, pin_hash,
		data_encryption, budget_alerts, goal_milestones, daily_summary, auto_backup,
		smart_categorization, location_tracking, created_at, updated_at`
)

const insertCategory = `INSERT INTO categories (` + categoryColumns + `)
	VALUES (:id, :user_id, :name, :icon, :type, :color, :is_default, :created_at)`

func (s *Store) CreateAccount(ctx context.Context, u core.User, st core.AppSettings, cats []core.Category) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		user := userRow{
			ID:               u.ID,
			Username:         u.Username,
			PasswordHash:     u.PasswordHash,
			PINHash:          u.PINHash,
			BiometricEnabled: u.BiometricEnabled,
			CreatedAt:        u.CreatedAt.UTC(),
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`)
			VALUES (:id, :username, :password_hash, :pin_hash, :biometric_enabled, :created_at)`, user); err != nil {
			return fmt.Errorf("insert user: %w", mapError(err))
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO app_settings (`+settingsColumns+`)
			VALUES (:id, :user_id, :theme, :language, :currency, :app_lock_enabled, :pin_hash,
				:data_encryption, :budget_alerts, :goal_milestones, :daily_summary, :auto_backup,
				:smart_categorization, :location_tracking, :created_at, :updated_at)`, newSettingsRow(st)); err != nil {
			return fmt.Errorf("insert settings: %w", mapError(err))
		}
		for _, c := range cats {
			if _, err := tx.NamedExecContext(ctx, insertCategory, newCategoryRow(c)); err != nil {
				return fmt.Errorf("insert category %s: %w", c.Name, mapError(err))
			}
		}
		return nil
	})
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	var r userRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return r.toCore(), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var r userRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return r.toCore(), nil
}

func newCategoryRow(c core.Category) categoryRow {
	return categoryRow{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Icon:      c.Icon,
		Type:      string(c.Type),
		Color:     c.Color,
		IsDefault: c.IsDefault,
		CreatedAt: c.CreatedAt.UTC(),
	}
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) error {
	if _, err := s.db.NamedExecContext(ctx, insertCategory, newCategoryRow(c)); err != nil {
		return fmt.Errorf("insert category: %w", mapError(err))
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var r categoryRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return r.toCore(), nil
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows,
		s.q(`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY type, created_at, name`), userID); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}

func (s *Store) GetSettings(ctx context.Context, userID string) (core.AppSettings, error) {
	var r settingsRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+settingsColumns+` FROM app_settings WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AppSettings{}, fmt.Errorf("settings of %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return core.AppSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return r.toCore(), nil
}

func (s *Store) UpdateSettings(ctx context.Context, st core.AppSettings) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE app_settings SET
		theme = :theme, language = :language, currency = :currency,
		app_lock_enabled = :app_lock_enabled, pin_hash = :pin_hash,
		data_encryption = :data_encryption, budget_alerts = :budget_alerts,
		goal_milestones = :goal_milestones, daily_summary = :daily_summary,
		auto_backup = :auto_backup, smart_categorization = :smart_categorization,
		location_tracking = :location_tracking, updated_at = :updated_at
		WHERE user_id = :user_id`, newSettingsRow(st))
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return expectOne(res, "settings of", st.UserID)
}

func (s *Store) SetBiometric(ctx context.Context, userID string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET biometric_enabled = ? WHERE id = ?`), enabled, userID)
	if err != nil {
		return fmt.Errorf("update user biometric: %w", err)
	}
	return expectOne(res, "user", userID)
}

func (s *Store) SetPIN(ctx context.Context, userID, pinHash string, at time.Time) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`UPDATE users SET pin_hash = ? WHERE id = ?`), pinHash, userID)
		if err != nil {
			return fmt.Errorf("update user pin: %w", err)
		}
		if err := expectOne(res, "user", userID); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx,
			s.q(`UPDATE app_settings SET pin_hash = ?, app_lock_enabled = ?, updated_at = ? WHERE user_id = ?`),
			pinHash, true, at.UTC(), userID)
		if err != nil {
			return fmt.Errorf("update settings pin: %w", err)
		}
		return expectOne(res, "settings of", userID)
	})
}
