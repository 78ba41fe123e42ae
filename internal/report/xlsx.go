package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter writes a workbook with Summary, Transactions and Trend sheets.
type XLSXExporter struct {
	Dir string
}

func (e XLSXExporter) Name() string { return "xlsx" }

// Path is where Export writes rep.
func (e XLSXExporter) Path(rep MonthReport) string {
	return filepath.Join(e.Dir, rep.FileName()+".xlsx")
}

func (e XLSXExporter) Export(ctx context.Context, rep MonthReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRows(f, "Summary", rep.SummaryTable()); err != nil {
		return err
	}
	f.SetColWidth("Summary", "A", "A", 22)
	f.SetColWidth("Summary", "B", "C", 16)

	if _, err := f.NewSheet("Transactions"); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeTransactions(f, rep); err != nil {
		return err
	}
	f.SetCellStyle("Transactions", "A1", "E1", headerStyle)
	f.SetColWidth("Transactions", "A", "C", 14)
	f.SetColWidth("Transactions", "D", "D", 32)

	if _, err := f.NewSheet("Trend"); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeRows(f, "Trend", rep.TrendTable()); err != nil {
		return err
	}
	f.SetCellStyle("Trend", "A1", "C1", headerStyle)

	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := f.SaveAs(e.Path(rep)); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// writeRows writes string rows starting at A1.
func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// writeTransactions stores amounts as numbers so the sheet can be summed.
func writeTransactions(f *excelize.File, rep MonthReport) error {
	const sheet = "Transactions"
	header := make([]any, len(transactionHeader))
	for i, h := range transactionHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rep.Rows {
		amount, _ := r.Amount.Float64()
		row := []any{r.Date.Format("2006-01-02"), string(r.Type), r.Category, r.Description, amount}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write transaction row %d: %w", i+2, err)
		}
	}
	return nil
}
