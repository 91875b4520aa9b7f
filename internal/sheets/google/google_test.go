package google

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/log"
	ports "github.com/recipereverie-droid/Budget-Tracker/internal/sheets"
)

// fakeSheets answers the three Values calls the client makes.
type fakeSheets struct {
	mu      sync.Mutex
	rows    [][]any
	gets    int
	updates int
	appends []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "A1:I1"):
		f.gets++
		var values [][]any
		if len(f.rows) > 0 {
			values = f.rows[:1]
		}
		writeJSON(w, map[string]any{"values": values})
	case r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"values": rendered(f.rows)})
	case r.Method == http.MethodPut:
		f.updates++
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.rows = append(body.Values, f.rows...)
		writeJSON(w, map[string]any{"updatedRows": 1})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.rows = append(f.rows, body.Values...)
		f.appends = append(f.appends, r.URL.Query().Get("valueInputOption"))
		n := len(f.rows)
		writeJSON(w, map[string]any{"updates": map[string]any{
			"updatedRange": "'2025 Transactions'!A" + strconv.Itoa(n) + ":I" + strconv.Itoa(n),
		}})
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

// rendered returns rows the way Sheets formats them, without the leading
// apostrophe that marks a literal text cell.
func rendered(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = make([]any, len(row))
		for j, v := range row {
			if s, ok := v.(string); ok {
				v = strings.TrimPrefix(s, "'")
			}
			out[i][j] = v
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, fake *fakeSheets) (*Client, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	c, err := NewClient(context.Background(), Config{SpreadsheetID: "sheet-1", RequestsPerMinute: 6000},
		log.New(log.Config{Output: &logs}),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, &logs
}

func testRow(id string, day int) ports.Row {
	return ports.NewRow(core.Transaction{
		ID:            id,
		Amount:        core.Money{Cents: 42050},
		Description:   "Groceries",
		Type:          core.Expense,
		PaymentMethod: "upi",
		Date:          time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Tags:          []string{"food"},
	}, core.Category{Name: "Food & Dining"})
}

func TestNewClient_MissingSpreadsheetID(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, nil)
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := NewClient(context.Background(), Config{SpreadsheetID: "id"}, nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_UnreadableCredentialsFile(t *testing.T) {
	_, err := NewClient(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: t.TempDir() + "/missing.json"}, nil)
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_AppendWritesHeaderOnce(t *testing.T) {
	fake := &fakeSheets{}
	c, _ := newTestClient(t, fake)
	ctx := context.Background()

	ref, err := c.Append(ctx, testRow("t1", 14))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "'2025 Transactions'!A2:I2" {
		t.Errorf("ref = %q", ref)
	}
	if _, err := c.Append(ctx, testRow("t2", 15)); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	if fake.gets != 1 || fake.updates != 1 {
		t.Errorf("header checked %d times and written %d times, want 1 and 1", fake.gets, fake.updates)
	}
	if len(fake.rows) != 3 {
		t.Fatalf("sheet has %d rows, want header plus 2", len(fake.rows))
	}
	if fake.rows[0][0] != "Date" || fake.rows[1][8] != "t1" {
		t.Errorf("unexpected rows: %v", fake.rows)
	}
	for _, opt := range fake.appends {
		if opt != valueInputOption {
			t.Errorf("valueInputOption = %q", opt)
		}
	}
}

func TestClient_AppendStoresTextCellsLiterally(t *testing.T) {
	fake := &fakeSheets{}
	c, _ := newTestClient(t, fake)
	ctx := context.Background()

	row := testRow("t1", 14)
	row.Description = `=IMPORTXML("http://example.com","//a")`
	row.Category = "+Misc"
	row.PaymentMethod = ""
	row.Tags = []string{"-1", "food"}
	row.Location = "1/2"
	if _, err := c.Append(ctx, row); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got := fake.rows[1]
	want := []any{"2025-03-14", `'=IMPORTXML("http://example.com","//a")`, "expense", "'+Misc", "420.50", "", "'-1, food", "'1/2", "t1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %s = %v, want %v", ports.Header[i], got[i], want[i])
		}
	}

	rows, err := c.ListRows(ctx, 2025, time.March)
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Description != row.Description || rows[0].Location != "1/2" || rows[0].Category != "+Misc" {
		t.Errorf("unexpected row read back: %+v", rows[0])
	}
}

func TestClient_AppendRejectsRowWithoutID(t *testing.T) {
	c, _ := newTestClient(t, &fakeSheets{})
	if _, err := c.Append(context.Background(), ports.Row{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_ListRows(t *testing.T) {
	fake := &fakeSheets{}
	c, _ := newTestClient(t, fake)
	ctx := context.Background()
	for i, day := range []int{1, 14} {
		if _, err := c.Append(ctx, testRow("t"+strconv.Itoa(i+1), day)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	fake.rows = append(fake.rows,
		[]any{"2025-04-02", "Rent", "expense", "Housing", "9000", "bank", "", "", "t9"},
		[]any{"not a date"},
	)

	rows, err := c.ListRows(ctx, 2025, time.March)
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].TransactionID != "t2" || rows[1].Amount.Cents != 42050 || rows[1].Tags[0] != "food" {
		t.Errorf("unexpected row: %+v", rows[1])
	}

	if _, err := c.ListRows(ctx, 2025, 13); err == nil {
		t.Error("expected invalid month error")
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Transactions", "2025 Transactions"},
		{"2024 Transactions", "2024 Transactions"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, 2025); got != tt.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestSheetRangeQuotes(t *testing.T) {
	if got := sheetRange("Asha's 2025", "A:I"); got != "'Asha''s 2025'!A:I" {
		t.Errorf("sheetRange = %q", got)
	}
}

func TestNewLimiter(t *testing.T) {
	l := newLimiter(0)
	if l.Burst() != 6 {
		t.Errorf("default burst = %d, want 6", l.Burst())
	}
	if got := time.Duration(float64(time.Second) / float64(l.Limit())); got != time.Second {
		t.Errorf("default interval = %v, want 1s", got)
	}
	if b := newLimiter(5).Burst(); b != 1 {
		t.Errorf("burst for 5 rpm = %d, want 1", b)
	}
}

func TestClient_WaitHonoursContext(t *testing.T) {
	c := &Client{limiter: newLimiter(1)}
	ctx, cancel := context.WithCancel(context.Background())
	if err := c.wait(ctx); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}
	cancel()
	if err := c.wait(ctx); err == nil || !strings.Contains(err.Error(), "sheets rate limit") {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}
