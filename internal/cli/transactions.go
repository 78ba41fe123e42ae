package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"

	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

func init() {
	register(command{
		name:    "add",
		usage:   "--type expense|income --amount 12,50 --category <id> [--date YYYY-MM-DD] [--desc text]",
		summary: "Record a transaction",
		flags:   transactionFlags,
		run:     runAdd,
	})
	register(command{
		name:    "update",
		usage:   "<id> [--type] [--amount] [--category] [--date] [--desc]",
		summary: "Change fields of a transaction",
		flags:   transactionFlags,
		run:     runUpdate,
	})
	register(command{
		name:    "delete",
		usage:   "<id>",
		summary: "Remove a transaction",
		run:     runDelete,
	})
	register(command{
		name:    "show",
		usage:   "<id>",
		summary: "Show one transaction",
		run:     runShow,
	})
	register(command{
		name:    "list",
		usage:   "[--month 1-12 --year YYYY] [--all] [--type] [--search text]",
		summary: "List transactions grouped by day",
		flags: func(fs *pflag.FlagSet) {
			monthFlags(fs)
			fs.Bool("all", false, "list every month")
			fs.StringP("type", "t", "", "income or expense")
			fs.StringP("search", "s", "", "match description or category name")
		},
		run: runList,
	})
	register(command{
		name:    "recent",
		usage:   "[-n 5]",
		summary: "Show the latest transactions",
		flags: func(fs *pflag.FlagSet) {
			fs.IntP("limit", "n", 5, "number of transactions")
		},
		run: runRecent,
	})
}

func transactionFlags(fs *pflag.FlagSet) {
	fs.StringP("type", "t", "expense", "income or expense")
	fs.StringP("amount", "a", "", "positive amount, comma or dot decimal separator")
	fs.StringP("category", "c", "", "category id")
	fs.StringP("date", "d", "", "date as YYYY-MM-DD (default today)")
	fs.String("desc", "", "description")
}

func (a *App) parseDate(s string) (time.Time, error) {
	if s == "" {
		return a.Now(), nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

func (a *App) checkCategory(id string) error {
	if _, ok := a.Store.CategoryByID(id); !ok {
		return fmt.Errorf("%w: %q (see 'fintrack categories')", ErrUnknownCategory, id)
	}
	return nil
}

func runAdd(ctx context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	typ, _ := fs.GetString("type")
	rawAmount, _ := fs.GetString("amount")
	category, _ := fs.GetString("category")
	rawDate, _ := fs.GetString("date")
	desc, _ := fs.GetString("desc")

	tt, err := core.ParseTransactionType(typ)
	if err != nil {
		return err
	}
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return err
	}
	if err := a.checkCategory(category); err != nil {
		return err
	}
	date, err := a.parseDate(rawDate)
	if err != nil {
		return err
	}

	tx := a.Store.AddTransaction(ctx, core.NewTransaction{
		Amount:      amount,
		Type:        tt,
		CategoryID:  category,
		Date:        date,
		Description: strings.TrimSpace(desc),
	})
	fmt.Fprintf(a.Out, "Added %s %s %s on %s (%s)\n",
		tx.Type, a.Store.FormatAmount(tx.Amount), a.categoryName(tx.CategoryID), tx.Date.Format(dateLayout), tx.ID)
	return nil
}

func runUpdate(ctx context.Context, a *App, fs *pflag.FlagSet, args []string) error {
	id, err := firstArg(args, "transaction id")
	if err != nil {
		return err
	}
	if _, ok := a.Store.TransactionByID(id); !ok {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}

	var patch core.TransactionPatch
	if fs.Changed("type") {
		v, _ := fs.GetString("type")
		tt, err := core.ParseTransactionType(v)
		if err != nil {
			return err
		}
		patch.Type = &tt
	}
	if fs.Changed("amount") {
		v, _ := fs.GetString("amount")
		amount, err := core.ParseAmount(v)
		if err != nil {
			return err
		}
		patch.Amount = &amount
	}
	if fs.Changed("category") {
		v, _ := fs.GetString("category")
		if err := a.checkCategory(v); err != nil {
			return err
		}
		patch.CategoryID = &v
	}
	if fs.Changed("date") {
		v, _ := fs.GetString("date")
		d, err := a.parseDate(v)
		if err != nil {
			return err
		}
		patch.Date = &d
	}
	if fs.Changed("desc") {
		v, _ := fs.GetString("desc")
		v = strings.TrimSpace(v)
		patch.Description = &v
	}
	if patch.IsEmpty() {
		fmt.Fprintln(a.Out, "Nothing to update")
		return nil
	}

	a.Store.UpdateTransaction(ctx, id, patch)
	fmt.Fprintf(a.Out, "Updated %s\n", id)
	return nil
}

func runDelete(ctx context.Context, a *App, _ *pflag.FlagSet, args []string) error {
	id, err := firstArg(args, "transaction id")
	if err != nil {
		return err
	}
	if _, ok := a.Store.TransactionByID(id); !ok {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	a.Store.DeleteTransaction(ctx, id)
	fmt.Fprintf(a.Out, "Deleted %s\n", id)
	return nil
}

func runShow(_ context.Context, a *App, _ *pflag.FlagSet, args []string) error {
	id, err := firstArg(args, "transaction id")
	if err != nil {
		return err
	}
	tx, ok := a.Store.TransactionByID(id)
	if !ok {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	w := a.table()
	fmt.Fprintf(w, "ID\t%s\n", tx.ID)
	fmt.Fprintf(w, "Date\t%s\n", tx.Date.Format(dateLayout))
	fmt.Fprintf(w, "Type\t%s\n", tx.Type)
	fmt.Fprintf(w, "Amount\t%s\n", a.Store.FormatAmount(tx.Amount))
	fmt.Fprintf(w, "Category\t%s\n", a.categoryName(tx.CategoryID))
	fmt.Fprintf(w, "Description\t%s\n", tx.Description)
	return w.Flush()
}

func runList(_ context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	var filter store.TransactionFilter
	if v, _ := fs.GetString("type"); v != "" {
		tt, err := core.ParseTransactionType(v)
		if err != nil {
			return err
		}
		filter.Type = tt
	}
	filter.Search, _ = fs.GetString("search")

	txs := a.Store.Transactions(filter)
	if all, _ := fs.GetBool("all"); !all {
		month, year, err := a.selectedMonth(fs)
		if err != nil {
			return err
		}
		inMonth := txs[:0]
		for _, t := range txs {
			if core.InMonth(t.Date, month, year) {
				inMonth = append(inMonth, t)
			}
		}
		txs = inMonth
	}

	if len(txs) == 0 {
		fmt.Fprintln(a.Out, "No transactions")
		return nil
	}
	for _, g := range store.GroupByDay(txs) {
		fmt.Fprintln(a.Out, g.Date.Format("Mon, 02 Jan 2006"))
		a.writeTransactions(g.Transactions)
	}
	return nil
}

func runRecent(_ context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	n, _ := fs.GetInt("limit")
	txs := a.Store.RecentTransactions(n)
	if len(txs) == 0 {
		fmt.Fprintln(a.Out, "No transactions")
		return nil
	}
	a.writeTransactions(txs)
	return nil
}

// writeTransactions prints one aligned line per transaction, expenses with a
// leading minus.
func (a *App) writeTransactions(txs []core.Transaction) {
	w := a.table()
	for _, t := range txs {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			t.ID, a.categoryName(t.CategoryID), t.Description, a.Store.FormatAmount(t.Signed()))
	}
	w.Flush()
}
