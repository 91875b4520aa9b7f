// Package worker consumes ledger events: it backs recorded transactions up
// to a spreadsheet and delivers stored notifications.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/amqp"
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/log"
	"github.com/recipereverie-droid/Budget-Tracker/internal/rules"
	"github.com/recipereverie-droid/Budget-Tracker/internal/sheets"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage"
)

// Store is the part of storage the worker reads.
type Store interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID string, r core.DateRange) ([]core.Transaction, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	GetNotification(ctx context.Context, id string) (core.Notification, error)
}

// Notifier delivers a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n core.Notification) error
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n core.Notification) error {
	l.Logger.InfoContext(ctx, "Notification delivered",
		log.FieldNotificationID, n.ID,
		log.FieldUserID, n.UserID,
		"type", string(n.Type),
		"title", n.Title)
	return nil
}

// EventWorker handles events from the bus. Its Handle method is an amqp.Handler.
type EventWorker struct {
	store    Store
	backup   sheets.TransactionAppender
	notifier Notifier
	logger   *log.Logger
}

// NewEventWorker builds a worker. backup may be nil, in which case
// transaction events are acknowledged without a backup.
func NewEventWorker(store Store, backup sheets.TransactionAppender, notifier Notifier, logger *log.Logger) *EventWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentWorker)
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &EventWorker{store: store, backup: backup, notifier: notifier, logger: logger}
}

// Handle processes one event. Events that point at records which no longer
// exist are dropped; other failures are returned so the message is requeued.
func (w *EventWorker) Handle(ctx context.Context, ev amqp.Event) error {
	w.logger.DebugContext(ctx, "Processing event",
		log.FieldEventKind, string(ev.Kind), log.FieldEventID, ev.ID, log.FieldUserID, ev.UserID)

	var err error
	switch ev.Kind {
	case amqp.KindTransactionRecorded:
		err = w.backupTransaction(ctx, ev.ID)
	case amqp.KindNotificationCreated:
		err = w.deliverNotification(ctx, ev.ID)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "Dropping event for missing record",
			log.FieldEventKind, string(ev.Kind), log.FieldEventID, ev.ID, log.FieldError, err)
		return nil
	}
	return err
}

func (w *EventWorker) backupTransaction(ctx context.Context, id string) error {
	if w.backup == nil {
		w.logger.WarnContext(ctx, "No backup configured, skipping transaction", log.FieldTransactionID, id)
		return nil
	}
	t, err := w.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	return w.appendRow(ctx, w.backup, t)
}

func (w *EventWorker) appendRow(ctx context.Context, backup sheets.TransactionAppender, t core.Transaction) error {
	c, err := w.store.GetCategory(ctx, t.CategoryID)
	if err != nil {
		return fmt.Errorf("get category from storage: %w", err)
	}
	ref, err := backup.Append(ctx, sheets.NewRow(t, c))
	if err != nil {
		return fmt.Errorf("append to backup: %w", err)
	}
	w.logger.InfoContext(ctx, "Transaction backed up",
		log.FieldTransactionID, t.ID,
		log.FieldSheetsRef, ref,
		log.FieldAmountCents, t.Amount.Cents)
	return nil
}

func (w *EventWorker) deliverNotification(ctx context.Context, id string) error {
	n, err := w.store.GetNotification(ctx, id)
	if err != nil {
		return fmt.Errorf("get notification from storage: %w", err)
	}
	if n.IsRead {
		return nil
	}
	if err := w.notifier.Notify(ctx, n); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Backfill appends every transaction of userID in the given month that is
// missing from the backup. It recovers from lost events or worker downtime
// and returns how many rows were written.
func (w *EventWorker) Backfill(ctx context.Context, backup sheets.Backup, userID string, year int, month time.Month) (int, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	window := rules.MonthWindow{}.Window(start)
	txns, err := w.store.ListTransactions(ctx, userID, window)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	rows, err := backup.ListRows(ctx, year, month)
	if err != nil {
		return 0, fmt.Errorf("list backup rows: %w", err)
	}
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		seen[r.TransactionID] = true
	}

	written, failed := 0, 0
	for _, t := range txns {
		if seen[t.ID] {
			continue
		}
		if err := w.appendRow(ctx, backup, t); err != nil {
			w.logger.ErrorContext(ctx, "Failed to back up transaction", log.FieldTransactionID, t.ID, log.FieldError, err)
			failed++
			continue
		}
		written++
	}
	w.logger.InfoContext(ctx, "Backfill completed",
		log.FieldUserID, userID, "month", start.Format("2006-01"),
		"total", len(txns), "written", written, "errors", failed)
	if failed > 0 {
		return written, fmt.Errorf("%d transactions could not be backed up", failed)
	}
	return written, nil
}
