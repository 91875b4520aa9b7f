// Package sheets backs transactions up to a spreadsheet, one row per transaction.
package sheets

import (
	"context"
	"strings"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// Header is the first row of every backup sheet.
var Header = []string{"Date", "Description", "Type", "Category", "Amount", "Payment method", "Tags", "Location", "Transaction ID"}

// DateLayout is how dates are written to the sheet.
const DateLayout = "2006-01-02"

// Row is one backed-up transaction.
type Row struct {
	Date          time.Time
	Description   string
	Type          core.EntryType
	Category      string
	Amount        core.Money
	PaymentMethod string
	Tags          []string
	Location      string
	TransactionID string
}

// NewRow flattens a transaction and the name of its category.
func NewRow(t core.Transaction, c core.Category) Row {
	return Row{
		Date:          t.Date.UTC(),
		Description:   t.Description,
		Type:          t.Type,
		Category:      c.Name,
		Amount:        t.Amount,
		PaymentMethod: t.PaymentMethod,
		Tags:          append([]string(nil), t.Tags...),
		Location:      t.Location,
		TransactionID: t.ID,
	}
}

// Values renders the row in Header order.
func (r Row) Values() []any {
	return []any{
		r.Date.Format(DateLayout),
		r.Description,
		string(r.Type),
		r.Category,
		r.Amount.String(),
		r.PaymentMethod,
		strings.Join(r.Tags, ", "),
		r.Location,
		r.TransactionID,
	}
}

// Ports for outbound adapters.
type (
	TransactionAppender interface {
		Append(ctx context.Context, r Row) (rowRef string, err error)
	}

	// TransactionLister reads rows back for a given year and month.
	TransactionLister interface {
		ListRows(ctx context.Context, year int, month time.Month) ([]Row, error)
	}

	Backup interface {
		TransactionAppender
		TransactionLister
	}
)
