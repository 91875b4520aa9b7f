package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/amqp"
	"github.com/recipereverie-droid/Budget-Tracker/internal/auth"
	"github.com/recipereverie-droid/Budget-Tracker/internal/cache"
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/log"
	"github.com/recipereverie-droid/Budget-Tracker/internal/services"
	"github.com/recipereverie-droid/Budget-Tracker/internal/sheets"
	gsheet "github.com/recipereverie-droid/Budget-Tracker/internal/sheets/google"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage/memory"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage/sqlstore"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the store, connects the optional event bus and
// backup, and wires them into a LedgerService. The event bus and backup
// are best effort: a failure is logged and the backend runs without them.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(ctx, config)
	if err != nil {
		return nil, err
	}

	res := &BackendResult{Store: store}

	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
			res.Events = client
			publisher = client
		}
	}

	if config.GoogleSpreadsheetID != "" {
		backup, err := gsheet.NewClient(ctx, gsheet.Config{
			SpreadsheetID:     config.GoogleSpreadsheetID,
			SheetName:         config.GoogleSheetName,
			CredentialsJSON:   config.GoogleServiceAccountJSON,
			CredentialsFile:   config.GoogleServiceAccountFile,
			RequestsPerMinute: config.GoogleSheetsRPM,
		}, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize Google Sheets backup, continuing without it", log.FieldError, err)
		} else {
			res.Backup = backup
		}
	}

	size, ttl := config.SettingsCacheSize, config.SettingsCacheTTL
	if size < 1 {
		size = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	res.SettingsCache = cache.NewLRUCache[core.AppSettings](size, ttl)

	res.Ledger = services.NewLedgerService(store, publisher,
		services.WithSettingsCache(res.SettingsCache),
		services.WithPasswordHasher(auth.Bcrypt{Cost: config.BcryptCost}),
		services.WithLogger(f.logger),
	)
	res.Cleanup = res.Ledger.Close

	f.logger.Info("Initialized backend",
		"type", config.Type.String(),
		"amqp_enabled", res.Events != nil,
		"backup_enabled", res.Backup != nil)
	return res, nil
}

func (f *DefaultFactory) openStore(ctx context.Context, config Config) (storage.Store, error) {
	switch config.Type {
	case MemoryBackend:
		return memory.New(), nil
	case SQLiteBackend:
		s, err := sqlstore.OpenSQLite(ctx, config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return s, nil
	case PostgresBackend:
		s, err := sqlstore.OpenPostgres(ctx, config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres store")
		return s, nil
	}
	return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
}

// OpenBackup returns the configured backup, or an error when none is available.
func (r *BackendResult) OpenBackup() (sheets.Backup, error) {
	if r.Backup == nil {
		return nil, errors.New("no spreadsheet backup configured (set GOOGLE_SPREADSHEET_ID)")
	}
	return r.Backup, nil
}
