package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scenarioStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s := store.New(nil, nil)
	s.SetInitialBalance(ctx, dec("100"))
	s.SetCurrency(ctx, core.Currency{Code: "USD", Symbol: "$", Locale: "en-US"})
	add := func(amount string, tt core.TransactionType, cat string, d int, m time.Month, desc string) {
		s.AddTransaction(ctx, core.NewTransaction{
			Amount: dec(amount), Type: tt, CategoryID: cat,
			Date:        time.Date(2024, m, d, 9, 0, 0, 0, time.UTC),
			Description: desc,
		})
	}
	add("30", core.Expense, "food", 15, time.June, "Groceries, weekly")
	add("50", core.Income, "salary", 1, time.June, "Salary")
	add("20", core.Expense, "transport", 1, time.July, "Bus")
	add("5", core.Expense, "deleted-cat", 20, time.June, "Mystery")
	return s
}

func TestBuildMonth(t *testing.T) {
	rep, err := BuildMonth(scenarioStore(t), 5, 2024)
	require.NoError(t, err)

	assert.Equal(t, "2024-06", rep.Ref.Label())
	assert.Equal(t, "June 2024", rep.Title())
	assert.True(t, rep.Totals.Income.Equal(dec("50")))
	assert.True(t, rep.Totals.Expense.Equal(dec("35")))
	assert.True(t, rep.CurrentBalance.Equal(dec("95")))

	require.Len(t, rep.Rows, 3)
	assert.Equal(t, "Salary", rep.Rows[0].Description, "rows are sorted by date")
	assert.Equal(t, "Food & Drinks", rep.Rows[1].Category)
	assert.Equal(t, core.UncategorizedName, rep.Rows[2].Category)

	require.Len(t, rep.Breakdown, 2)
	assert.Equal(t, "food", rep.Breakdown[0].CategoryID)

	require.Len(t, rep.Trend, TrendMonths)
	assert.Equal(t, core.MonthRef{Month: 0, Year: 2024}, rep.Trend[0].Ref)
	assert.Equal(t, rep.Ref, rep.Trend[TrendMonths-1].Ref)

	_, err = BuildMonth(scenarioStore(t), 12, 2024)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestTables(t *testing.T) {
	rep, err := BuildMonth(scenarioStore(t), 5, 2024)
	require.NoError(t, err)

	tx := rep.TransactionTable()
	require.Len(t, tx, 4)
	assert.Equal(t, []string{"Date", "Type", "Category", "Description", "Amount"}, tx[0])
	assert.Equal(t, []string{"2024-06-01", "income", "Salary", "Salary", "50.00"}, tx[1])

	summary := rep.SummaryTable()
	assert.Equal(t, []string{"Income", "$50.00"}, summary[1])
	assert.Equal(t, []string{"Current balance", "$95.00"}, summary[4])

	trend := rep.TrendTable()
	require.Len(t, trend, TrendMonths+1)
	assert.Equal(t, []string{"Jun 2024", "50.00", "35.00"}, trend[TrendMonths])
}

func TestWriteCSV(t *testing.T) {
	rep, err := BuildMonth(scenarioStore(t), 5, 2024)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rep))
	require.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Groceries, weekly", records[2][3])
}

func TestFileExporters(t *testing.T) {
	rep, err := BuildMonth(scenarioStore(t), 5, 2024)
	require.NoError(t, err)
	dir := t.TempDir()

	csvEx := CSVExporter{Dir: dir}
	xlsxEx := XLSXExporter{Dir: dir}
	results, err := ExportAll(context.Background(), nil, rep, csvEx, xlsxEx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "csv", results[0].Exporter)
	assert.Equal(t, "xlsx", results[1].Exporter)

	_, err = os.Stat(csvEx.Path(rep))
	require.NoError(t, err)

	f, err := excelize.OpenFile(xlsxEx.Path(rep))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "Transactions", "Trend"}, f.GetSheetList())

	header, err := f.GetCellValue("Transactions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)
	amount, err := f.GetCellValue("Transactions", "E3")
	require.NoError(t, err)
	assert.Equal(t, "30", amount)
	month, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2024-06", month)
}

type stubExporter struct {
	name string
	err  error
}

func (s stubExporter) Name() string { return s.name }

func (s stubExporter) Export(context.Context, MonthReport) error { return s.err }

func TestExportAllJoinsFailures(t *testing.T) {
	boom := errors.New("boom")
	results, err := ExportAll(context.Background(), nil, MonthReport{},
		stubExporter{name: "ok"},
		stubExporter{name: "bad", err: boom},
		stubExporter{name: "also-ok"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad: boom")
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[2].Err)
}

type fakeSheetsAPI struct {
	mu       sync.Mutex
	calls    []string
	titles   []string
	written  gsheet.BatchUpdateValuesRequest
	addedTab string
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		sheets := []map[string]any{}
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
		return
	case strings.HasSuffix(path, "/values:batchUpdate"):
		json.NewDecoder(r.Body).Decode(&f.written)
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Requests) > 0 && req.Requests[0].AddSheet != nil {
			f.addedTab = req.Requests[0].AddSheet.Properties.Title
		}
	}
	w.Write([]byte(`{}`))
}

func TestSheetsExporter(t *testing.T) {
	rep, err := BuildMonth(scenarioStore(t), 5, 2024)
	require.NoError(t, err)

	tests := []struct {
		name     string
		existing []string
		wantAdd  string
	}{
		{"creates missing tab", []string{"2024-05"}, "2024-06"},
		{"reuses existing tab", []string{"2024-06"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSheetsAPI{titles: tt.existing}
			srv := httptest.NewServer(api)
			defer srv.Close()

			ex, err := NewSheetsExporter(context.Background(), "sheet-id", nil,
				goption.WithEndpoint(srv.URL+"/"),
				goption.WithoutAuthentication(),
				goption.WithHTTPClient(srv.Client()))
			require.NoError(t, err)
			require.NoError(t, ex.Export(context.Background(), rep))

			assert.Equal(t, tt.wantAdd, api.addedTab)
			require.Len(t, api.written.Data, 2)
			assert.Equal(t, "'2024-06'!A1", api.written.Data[0].Range)
			assert.Equal(t, "Date", api.written.Data[0].Values[0][0])
			assert.Equal(t, "'2024-06'!H1", api.written.Data[1].Range)
			assert.Equal(t, "USER_ENTERED", api.written.ValueInputOption)
		})
	}
}

func TestA1RangeQuotesTabNames(t *testing.T) {
	assert.Equal(t, "'2024-06'!A:Z", a1Range("2024-06", "A:Z"))
	assert.Equal(t, "'Ana''s June'!A1", a1Range("Ana's June", "A1"))
}

func TestCredentialsOption(t *testing.T) {
	_, err := CredentialsOption("", "")
	assert.Error(t, err)

	_, err = CredentialsOption("/definitely/missing.json", "")
	assert.Error(t, err)

	opt, err := CredentialsOption("", `{"type":"service_account"}`)
	require.NoError(t, err)
	assert.NotNil(t, opt)

	_, err = NewSheetsExporter(context.Background(), " ", nil)
	assert.Error(t, err)
}
