// Package report turns store aggregates into a month report and writes it
// out through pluggable exporters.
package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
)

// TrendMonths is the length of the trend included in every report.
const TrendMonths = 6

// Row is one transaction with its category resolved for display.
type Row struct {
	ID          string
	Date        time.Time
	Type        core.TransactionType
	Category    string
	Description string
	Amount      decimal.Decimal
}

type MonthReport struct {
	Ref            core.MonthRef
	GeneratedAt    time.Time
	User           string
	Currency       core.Currency
	Totals         core.MonthlyTotals
	CurrentBalance decimal.Decimal
	Breakdown      []core.CategoryShare
	Rows           []Row
	Trend          []core.MonthPoint
}

// Exporter writes a report somewhere.
type Exporter interface {
	Name() string
	Export(ctx context.Context, rep MonthReport) error
}

// BuildMonth collects everything a report needs for the 0-indexed month of
// year from the store.
func BuildMonth(st *store.Store, month, year int) (MonthReport, error) {
	ref := core.MonthRef{Month: month, Year: year}
	if !ref.Valid() {
		return MonthReport{}, fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}

	names := map[string]string{}
	for _, c := range st.Categories() {
		names[c.ID] = c.Name
	}

	txs := st.TransactionsByMonth(month, year)
	slices.SortStableFunc(txs, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		name, ok := names[t.CategoryID]
		if !ok {
			name = core.UncategorizedName
		}
		rows = append(rows, Row{
			ID:          t.ID,
			Date:        t.Date,
			Type:        t.Type,
			Category:    name,
			Description: t.Description,
			Amount:      t.Amount,
		})
	}

	return MonthReport{
		Ref:            ref,
		GeneratedAt:    time.Now(),
		User:           st.User().Name,
		Currency:       st.Currency(),
		Totals:         st.MonthlyTotals(month, year),
		CurrentBalance: st.CurrentBalance(),
		Breakdown:      st.CategoryBreakdown(month, year),
		Rows:           rows,
		Trend:          st.MonthlyTrend(month, year, TrendMonths),
	}, nil
}

// Format renders amount in the report's currency.
func (r MonthReport) Format(amount decimal.Decimal) string {
	return currency.Format(r.Currency, amount)
}

// Title is the human heading, e.g. "June 2024".
func (r MonthReport) Title() string {
	return r.Ref.Start(time.UTC).Format("January 2006")
}

var transactionHeader = []string{"Date", "Type", "Category", "Description", "Amount"}

// TransactionTable returns the header plus one row per transaction. Amounts
// are plain two-decimal numbers so spreadsheets can sum them.
func (r MonthReport) TransactionTable() [][]string {
	out := make([][]string, 0, len(r.Rows)+1)
	out = append(out, transactionHeader)
	for _, row := range r.Rows {
		out = append(out, []string{
			core.DayKey(row.Date),
			string(row.Type),
			row.Category,
			row.Description,
			row.Amount.StringFixed(2),
		})
	}
	return out
}

// SummaryTable lists the month totals followed by the category breakdown.
func (r MonthReport) SummaryTable() [][]string {
	out := [][]string{
		{"Month", r.Ref.Label()},
		{"Income", r.Format(r.Totals.Income)},
		{"Expense", r.Format(r.Totals.Expense)},
		{"Balance", r.Format(r.Totals.Balance)},
		{"Current balance", r.Format(r.CurrentBalance)},
		{},
		{"Category", "Amount", "Share %"},
	}
	for _, s := range r.Breakdown {
		out = append(out, []string{s.Name, r.Format(s.Amount), fmt.Sprintf("%d", s.Percentage)})
	}
	return out
}

// TrendTable is the month-by-month income and expense, oldest first.
func (r MonthReport) TrendTable() [][]string {
	out := [][]string{{"Month", "Income", "Expense"}}
	for _, p := range r.Trend {
		out = append(out, []string{p.Ref.ShortName() + " " + fmt.Sprint(p.Ref.Year), p.Income.StringFixed(2), p.Expense.StringFixed(2)})
	}
	return out
}

// FileName is the base name exporters use, e.g. "fintrack-2024-06".
func (r MonthReport) FileName() string {
	return "fintrack-" + r.Ref.Label()
}
