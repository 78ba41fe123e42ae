package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"fintrack/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsExporter writes the report into a Google spreadsheet, one tab per
// month named like "2024-06". Transactions go to column A, the summary to
// column H. Re-exporting a month overwrites its tab.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

// CredentialsOption builds the client option for a service account, preferring
// inline JSON over a file path.
func CredentialsOption(file, inline string) (goption.ClientOption, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	return goption.WithCredentialsJSON(credentialsJSON), nil
}

func NewSheetsExporter(ctx context.Context, spreadsheetID string, logger *log.Logger, opts ...goption.ClientOption) (*SheetsExporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = log.Discard()
	}
	opts = append([]goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}, opts...)
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.WithComponent(log.ComponentReport),
	}, nil
}

func (e *SheetsExporter) Name() string { return "sheets" }

// TabName is the tab a report is written to.
func TabName(rep MonthReport) string {
	return rep.Ref.Label()
}

func (e *SheetsExporter) Export(ctx context.Context, rep MonthReport) error {
	tab := TabName(rep)
	if err := e.ensureTab(ctx, tab); err != nil {
		return err
	}

	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, a1Range(tab, "A:Z"),
		&gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear tab %s: %w", tab, err)
	}

	req := &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data: []*gsheet.ValueRange{
			{Range: a1Range(tab, "A1"), Values: toValues(rep.TransactionTable())},
			{Range: a1Range(tab, "H1"), Values: toValues(rep.SummaryTable())},
		},
	}
	if _, err := e.svc.Spreadsheets.Values.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("write tab %s: %w", tab, err)
	}

	e.logger.InfoContext(ctx, "Report written to Google Sheets",
		"tab", tab,
		log.FieldCount, len(rep.Rows))
	return nil
}

// a1Range quotes tab for A1 notation, doubling any single quote in it.
func a1Range(tab, cells string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cells
}

func (e *SheetsExporter) ensureTab(ctx context.Context, tab string) error {
	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			return nil
		}
	}

	_, err = e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add tab %s: %w", tab, err)
	}
	return nil
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}
