package store

import (
	"slices"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/currency"

	"github.com/shopspring/decimal"
)

// Every query below recomputes from the current transactions; nothing is
// cached between calls.

// TransactionsByMonth returns the transactions dated in the 0-indexed month
// of year, in insertion order.
func (s *Store) TransactionsByMonth(month, year int) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return byMonth(s.state.Transactions, month, year)
}

func byMonth(txs []core.Transaction, month, year int) []core.Transaction {
	out := []core.Transaction{}
	for _, t := range txs {
		if core.InMonth(t.Date, month, year) {
			out = append(out, t)
		}
	}
	return out
}

// TransactionByID returns the first transaction with id.
func (s *Store) TransactionByID(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// CurrentBalance is the initial balance plus all income minus all expense,
// across every month.
func (s *Store) CurrentBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bal := s.state.InitialBalance
	for _, t := range s.state.Transactions {
		bal = bal.Add(t.Signed())
	}
	return bal
}

// MonthlyTotals sums income and expense of one month. Its Balance is net of
// the month alone and differs from CurrentBalance by design of the screens
// that show both.
func (s *Store) MonthlyTotals(month, year int) core.MonthlyTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totals(byMonth(s.state.Transactions, month, year))
}

func totals(txs []core.Transaction) core.MonthlyTotals {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return core.MonthlyTotals{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// CategorySpending groups the month's expenses by category. Income is
// ignored and categories without spend are omitted. Order follows the first
// expense seen for each category.
func (s *Store) CategorySpending(month, year int) []core.CategorySpending {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return spending(byMonth(s.state.Transactions, month, year))
}

func spending(txs []core.Transaction) []core.CategorySpending {
	out := []core.CategorySpending{}
	index := map[string]int{}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(out)
			index[t.CategoryID] = i
			out = append(out, core.CategorySpending{CategoryID: t.CategoryID, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}

// CategoryBreakdown joins CategorySpending with category names and colours
// and each category's rounded share of the month's expense, largest first.
func (s *Store) CategoryBreakdown(month, year int) []core.CategoryShare {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := byMonth(s.state.Transactions, month, year)
	expense := totals(txs).Expense
	cats := make(map[string]core.Category, len(s.state.Categories))
	for _, c := range s.state.Categories {
		cats[c.ID] = c
	}

	hundred := decimal.NewFromInt(100)
	out := []core.CategoryShare{}
	for _, sp := range spending(txs) {
		share := core.CategoryShare{
			CategoryID: sp.CategoryID,
			Name:       core.UnknownCategoryName,
			Color:      "#000",
			Amount:     sp.Amount,
		}
		if c, ok := cats[sp.CategoryID]; ok {
			share.Name = c.Name
			share.Color = c.Color
		}
		if expense.IsPositive() {
			share.Percentage = int(sp.Amount.Div(expense).Mul(hundred).Round(0).IntPart())
		}
		out = append(out, share)
	}
	slices.SortStableFunc(out, func(a, b core.CategoryShare) int {
		return b.Amount.Cmp(a.Amount)
	})
	return out
}

// MonthlyTrend returns income and expense for n months ending with the given
// one, oldest first.
func (s *Store) MonthlyTrend(month, year, n int) []core.MonthPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	end := core.MonthRef{Month: month, Year: year}
	out := make([]core.MonthPoint, 0, max(n, 0))
	for i := n - 1; i >= 0; i-- {
		ref := end.AddMonths(-i)
		tot := totals(byMonth(s.state.Transactions, ref.Month, ref.Year))
		out = append(out, core.MonthPoint{Ref: ref, Income: tot.Income, Expense: tot.Expense})
	}
	return out
}

// TransactionFilter narrows Transactions. Zero values match everything.
type TransactionFilter struct {
	Type   core.TransactionType
	Search string // case-insensitive match on description or category name
}

// Transactions lists matching transactions, most recent first.
func (s *Store) Transactions(f TransactionFilter) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]string, len(s.state.Categories))
	for _, c := range s.state.Categories {
		names[c.ID] = strings.ToLower(c.Name)
	}
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	out := []core.Transaction{}
	for _, t := range s.state.Transactions {
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(names[t.CategoryID], needle) {
			continue
		}
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out
}

// RecentTransactions returns at most n transactions, most recent first.
func (s *Store) RecentTransactions(n int) []core.Transaction {
	all := s.Transactions(TransactionFilter{})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

func sortNewestFirst(txs []core.Transaction) {
	slices.SortStableFunc(txs, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
}

// GroupByDay buckets txs by calendar day, keeping the order of first
// appearance; pass transactions sorted newest first to get newest days first.
func GroupByDay(txs []core.Transaction) []core.DayGroup {
	out := []core.DayGroup{}
	index := map[string]int{}
	for _, t := range txs {
		key := core.DayKey(t.Date)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, core.DayGroup{Day: key, Date: t.Date})
		}
		out[i].Transactions = append(out[i].Transactions, t)
	}
	return out
}

// FormatAmount renders amount in the active currency with two decimals.
func (s *Store) FormatAmount(amount decimal.Decimal) string {
	return currency.Format(s.Currency(), amount)
}
