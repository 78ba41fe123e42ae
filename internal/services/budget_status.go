package services

import (
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
)

// BudgetReader is the part of the store budget tracking reads.
type BudgetReader interface {
	Budgets() []core.Budget
	Transactions(f store.TransactionFilter) []core.Transaction
}

// BudgetStatus is a budget measured against the expenses of its current
// period.
type BudgetStatus struct {
	Budget     core.Budget
	Start, End time.Time
	Spent      decimal.Decimal
	// Remaining goes negative once the budget is overspent.
	Remaining  decimal.Decimal
	Percentage int
	Over       bool
}

// BudgetStatuses evaluates every budget for the period containing now, in
// budget order. Budgets with an unknown period are skipped.
func BudgetStatuses(r BudgetReader, now time.Time) []BudgetStatus {
	expenses := r.Transactions(store.TransactionFilter{Type: core.Expense})
	hundred := decimal.NewFromInt(100)

	out := []BudgetStatus{}
	for _, b := range r.Budgets() {
		w, err := GetPeriodWindow(b.Period)
		if err != nil {
			continue
		}
		start, end := w.Window(now)

		spent := decimal.Zero
		for _, t := range expenses {
			if t.CategoryID != b.CategoryID {
				continue
			}
			if t.Date.Before(start) || !t.Date.Before(end) {
				continue
			}
			spent = spent.Add(t.Amount)
		}

		st := BudgetStatus{
			Budget:    b,
			Start:     start,
			End:       end,
			Spent:     spent,
			Remaining: b.Amount.Sub(spent),
			Over:      spent.GreaterThan(b.Amount),
		}
		if b.Amount.IsPositive() {
			st.Percentage = int(spent.Div(b.Amount).Mul(hundred).Round(0).IntPart())
		}
		out = append(out, st)
	}
	return out
}
