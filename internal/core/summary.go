package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyTotals sums one month. Balance is income minus expense for that
// month only; it never includes the initial balance.
type MonthlyTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// CategorySpending is the expense total of one category in a period.
type CategorySpending struct {
	CategoryID string
	Amount     decimal.Decimal
}

// CategoryShare is CategorySpending joined with display data.
type CategoryShare struct {
	CategoryID string
	Name       string
	Color      string
	Amount     decimal.Decimal
	Percentage int // rounded share of the month's expense, 0-100
}

// MonthPoint is one entry of a month-over-month trend.
type MonthPoint struct {
	Ref     MonthRef
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// DayGroup collects the transactions recorded on one calendar day.
type DayGroup struct {
	Day          string // 2006-01-02
	Date         time.Time
	Transactions []Transaction
}
