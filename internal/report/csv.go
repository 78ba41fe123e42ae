package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// utf8BOM lets spreadsheet apps detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter writes the month's transactions as CSV.
type CSVExporter struct {
	Dir string
}

func (e CSVExporter) Name() string { return "csv" }

func (e CSVExporter) Path(rep MonthReport) string {
	return filepath.Join(e.Dir, rep.FileName()+".csv")
}

func (e CSVExporter) Export(ctx context.Context, rep MonthReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(e.Path(rep))
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WriteCSV(f, rep); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv file: %w", err)
	}
	return nil
}

// WriteCSV writes the BOM followed by the transaction table.
func WriteCSV(w io.Writer, rep MonthReport) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rep.TransactionTable()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
