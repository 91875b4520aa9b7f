//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	ports "github.com/recipereverie-droid/Budget-Tracker/internal/sheets"
)

// Integration tests require a real spreadsheet and service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_BackupRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}
	if cfg.CredentialsJSON == "" && cfg.CredentialsFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client, err := NewClient(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	now := time.Now().UTC()
	id := "integration-" + now.Format("20060102150405")
	row := ports.NewRow(core.Transaction{
		ID:            id,
		Amount:        core.Money{Cents: 1234},
		Description:   "Integration test transaction",
		Type:          core.Expense,
		PaymentMethod: "cash",
		Date:          now,
	}, core.Category{Name: "Testing"})

	ref, err := client.Append(ctx, row)
	if err != nil {
		t.Fatalf("Failed to append row: %v", err)
	}
	t.Logf("Appended row at %s", ref)

	rows, err := client.ListRows(ctx, now.Year(), now.Month())
	if err != nil {
		t.Fatalf("Failed to list rows: %v", err)
	}
	for _, r := range rows {
		if r.TransactionID == id {
			if r.Amount.Cents != 1234 {
				t.Errorf("amount read back as %d", r.Amount.Cents)
			}
			return
		}
	}
	t.Errorf("row %s not found among %d rows", id, len(rows))
}
