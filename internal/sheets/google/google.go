// Package google is the Google Sheets backup adapter.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/recipereverie-droid/Budget-Tracker/internal/log"
	ports "github.com/recipereverie-droid/Budget-Tracker/internal/sheets"
)

const (
	valueInputOption = "USER_ENTERED"

	// Sheets allows 60 write requests per minute per user.
	defaultRequestsPerMinute = 60
)

// Config selects the spreadsheet and the service account used to write it.
// SheetName is a base name; the year of each row is prefixed to it unless
// the name already starts with a year.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	// RequestsPerMinute caps API calls made by one client; 0 means 60.
	RequestsPerMinute int
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
	limiter       *rate.Limiter

	mu          sync.Mutex
	headersDone map[string]bool
}

// Ensure interface conformance
var _ ports.Backup = (*Client)(nil)

// NewClient creates a Sheets client. Extra client options replace the
// service-account credentials when given.
func NewClient(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentSheets)

	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Transactions"
	}

	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID, "sheet", base)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetBase:     base,
		logger:        logger,
		limiter:       newLimiter(cfg.RequestsPerMinute),
		headersDone:   map[string]bool{},
	}, nil
}

// newLimiter spreads rpm requests over a minute with a burst of a tenth of them.
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// wait blocks until the quota allows another API call or ctx is done.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sheets rate limit: %w", err)
	}
	return nil
}

// credentials prefers inline JSON, then the file, then GOOGLE_APPLICATION_CREDENTIALS.
func credentials(cfg Config) ([]byte, error) {
	if js := strings.TrimSpace(cfg.CredentialsJSON); js != "" {
		return []byte(js), nil
	}
	file := strings.TrimSpace(cfg.CredentialsFile)
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// Append writes r as a new row of the sheet for r's year and returns the
// updated A1 range.
func (c *Client) Append(ctx context.Context, r ports.Row) (string, error) {
	if r.TransactionID == "" {
		return "", errors.New("row has no transaction id")
	}
	sheet := yearPrefixedName(c.sheetBase, r.Date.Year())
	if err := c.ensureHeader(ctx, sheet); err != nil {
		return "", err
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	vr := &gsheet.ValueRange{Values: [][]any{cellValues(r)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, sheetRange(sheet, "A:I"), vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	ref := sheetRange(sheet, "A:I")
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ensureHeader writes Header into row 1 when the sheet is empty. The check
// runs once per sheet per client.
func (c *Client) ensureHeader(ctx context.Context, sheet string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headersDone[sheet] {
		return nil
	}

	rng := sheetRange(sheet, "A1:I1")
	if err := c.wait(ctx); err != nil {
		return err
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", sheet, err)
	}
	if len(resp.Values) == 0 {
		header := make([]any, len(ports.Header))
		for i, h := range ports.Header {
			header[i] = h
		}
		if err := c.wait(ctx); err != nil {
			return err
		}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{header}}).
			ValueInputOption(valueInputOption).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header of %s: %w", sheet, err)
		}
		c.logger.InfoContext(ctx, "Wrote backup sheet header", "sheet", sheet)
	}
	c.headersDone[sheet] = true
	return nil
}

// ListRows reads back the rows of the given month. Rows that do not parse
// are skipped.
func (c *Client) ListRows(ctx context.Context, year int, month time.Month) ([]ports.Row, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	sheet := yearPrefixedName(c.sheetBase, year)
	rng := sheetRange(sheet, "A:I")
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []ports.Row
	for i, values := range resp.Values {
		r, ok := parseRow(toStrings(values))
		if !ok {
			if i > 0 {
				c.logger.DebugContext(ctx, "Skipping unparsable backup row", "sheet", sheet, "row", i+1)
			}
			continue
		}
		if r.Date.Year() == year && r.Date.Month() == month {
			out = append(out, r)
		}
	}
	return out, nil
}

// textColumns are the Header positions that hold user supplied text.
var textColumns = []int{1, 3, 5, 6, 7}

// cellValues renders r for a USER_ENTERED write. Text cells get a leading
// apostrophe so Sheets stores them literally and never evaluates them as a
// formula, date or number. Sheets drops the apostrophe when reading back.
func cellValues(r ports.Row) []any {
	vals := r.Values()
	for _, i := range textColumns {
		if s, _ := vals[i].(string); s != "" {
			vals[i] = "'" + s
		}
	}
	return vals
}

func sheetRange(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
