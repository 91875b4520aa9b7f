package backend

import (
	"context"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/amqp"
	"github.com/recipereverie-droid/Budget-Tracker/internal/cache"
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/services"
	"github.com/recipereverie-droid/Budget-Tracker/internal/sheets"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything a binary needs. Events and Backup are nil
// when they are not configured or could not be reached.
type BackendResult struct {
	Store         storage.Store
	Ledger        *services.LedgerService
	Events        *amqp.Client
	Backup        sheets.Backup
	SettingsCache *cache.LRUCache[core.AppSettings]
	Cleanup       CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresDSN  string

	// Optional collaborators
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	GoogleSheetsRPM          int

	SettingsCacheSize int
	SettingsCacheTTL  time.Duration
	BcryptCost        int
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
