package google

import (
	"strings"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	ports "github.com/recipereverie-droid/Budget-Tracker/internal/sheets"
)

// parseRow converts one sheet row, in Header order, back into a Row.
// The header row and rows without a date, amount or transaction id are rejected.
func parseRow(cols []string) (ports.Row, bool) {
	if len(cols) < len(ports.Header) {
		return ports.Row{}, false
	}
	date, err := time.Parse(ports.DateLayout, cols[0])
	if err != nil {
		return ports.Row{}, false
	}
	amount, ok := parseAmount(cols[4])
	if !ok {
		return ports.Row{}, false
	}
	typ := core.EntryType(strings.ToLower(cols[2]))
	if !typ.Valid() || cols[8] == "" {
		return ports.Row{}, false
	}
	return ports.Row{
		Date:          date,
		Description:   cols[1],
		Type:          typ,
		Category:      cols[3],
		Amount:        amount,
		PaymentMethod: cols[5],
		Tags:          splitTags(cols[6]),
		Location:      cols[7],
		TransactionID: cols[8],
	}, true
}

// parseAmount accepts what Sheets renders for a USER_ENTERED amount:
// "420", "420.5", "1,234.50" or a decimal comma like "420,50".
func parseAmount(s string) (core.Money, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Money{}, false
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	m, err := core.ParseNonNegativeMoney(s)
	if err != nil {
		return core.Money{}, false
	}
	return m, true
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
