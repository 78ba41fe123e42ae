package cli

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/services"

	"github.com/spf13/pflag"
)

func init() {
	register(command{
		name:    "onboard",
		usage:   "--name <name> [--currency EUR] [--balance 0]",
		summary: "Create your profile",
		open:    true,
		flags: func(fs *pflag.FlagSet) {
			fs.String("name", "", "your name")
			fs.String("currency", currency.Default().Code, "display currency code")
			fs.String("balance", "0", "starting balance")
		},
		run: runOnboard,
	})
	register(command{
		name:    "set-balance",
		usage:   "<amount>",
		summary: "Set the starting balance",
		run:     runSetBalance,
	})
	register(command{
		name:    "set-currency",
		usage:   "[code]",
		summary: "Change the display currency, or list them",
		open:    true,
		run:     runSetCurrency,
	})
	register(command{
		name:    "categories",
		summary: "List categories",
		open:    true,
		run:     runCategories,
	})
	register(command{
		name:    "category-add",
		usage:   "--name <name> [--icon tag] [--color #RRGGBB]",
		summary: "Create a category",
		flags: func(fs *pflag.FlagSet) {
			fs.String("name", "", "category name")
			fs.String("icon", "tag", "icon name")
			fs.String("color", "#7d7d7d", "hex colour")
		},
		run: runCategoryAdd,
	})
	register(command{
		name:    "category-delete",
		usage:   "<id>",
		summary: "Delete a category; its transactions keep the id",
		run:     runCategoryDelete,
	})
	register(command{
		name:    "budgets",
		summary: "List budgets with spending in the current period",
		run:     runBudgets,
	})
	register(command{
		name:    "budget-add",
		usage:   "--category <id> --amount 200 [--period monthly]",
		summary: "Create a budget",
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("category", "c", "", "category id")
			fs.StringP("amount", "a", "", "budget amount")
			fs.StringP("period", "p", string(core.Monthly), "weekly, monthly or yearly")
		},
		run: runBudgetAdd,
	})
	register(command{
		name:    "budget-delete",
		usage:   "<id>",
		summary: "Delete a budget",
		run:     runBudgetDelete,
	})
}

func runOnboard(ctx context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	name, _ := fs.GetString("name")
	code, _ := fs.GetString("currency")
	rawBalance, _ := fs.GetString("balance")

	if err := core.ValidateUserName(name); err != nil {
		return err
	}
	cur, err := currency.Lookup(code)
	if err != nil {
		return fmt.Errorf("%w: %s", err, code)
	}
	balance, err := core.ParseBalance(rawBalance)
	if err != nil {
		return err
	}

	a.Store.SetUser(ctx, core.User{Name: strings.TrimSpace(name)})
	a.Store.SetCurrency(ctx, cur.Currency)
	a.Store.SetInitialBalance(ctx, balance)
	fmt.Fprintf(a.Out, "Welcome, %s! Starting balance %s\n", a.Store.User().Name, a.Store.FormatAmount(balance))
	return nil
}

func runSetBalance(ctx context.Context, a *App, _ *pflag.FlagSet, args []string) error {
	raw, err := firstArg(args, "amount")
	if err != nil {
		return err
	}
	balance, err := core.ParseBalance(raw)
	if err != nil {
		return err
	}
	a.Store.SetInitialBalance(ctx, balance)
	fmt.Fprintf(a.Out, "Starting balance set to %s\n", a.Store.FormatAmount(balance))
	return nil
}

func runSetCurrency(ctx context.Context, a *App, _ *pflag.FlagSet, args []string) error {
	if len(args) == 0 {
		active := a.Store.Currency().Code
		w := a.table()
		for _, c := range currency.All() {
			marker := " "
			if c.Code == active {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %s\t%s\t%s\n", marker, c.Code, c.Symbol, c.Name)
		}
		return w.Flush()
	}
	cur, err := currency.Lookup(args[0])
	if err != nil {
		return fmt.Errorf("%w: %s", err, args[0])
	}
	a.Store.SetCurrency(ctx, cur.Currency)
	fmt.Fprintf(a.Out, "Currency set to %s (%s)\n", cur.Name, cur.Code)
	return nil
}

func runCategories(_ context.Context, a *App, _ *pflag.FlagSet, _ []string) error {
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tICON\tCOLOR")
	for _, c := range a.Store.Categories() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Icon, c.Color)
	}
	return w.Flush()
}

func runCategoryAdd(ctx context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	name, _ := fs.GetString("name")
	icon, _ := fs.GetString("icon")
	color, _ := fs.GetString("color")

	c := core.Category{Name: strings.TrimSpace(name), Icon: icon, Color: color}
	if err := c.Validate(); err != nil {
		return err
	}
	c = a.Store.AddCategory(ctx, c)
	fmt.Fprintf(a.Out, "Added category %s (%s)\n", c.Name, c.ID)
	return nil
}

func runCategoryDelete(ctx context.Context, a *App, _ *pflag.FlagSet, args []string) error {
	id, err := firstArg(args, "category id")
	if err != nil {
		return err
	}
	c, ok := a.Store.CategoryByID(id)
	if !ok {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	a.Store.DeleteCategory(ctx, id)
	fmt.Fprintf(a.Out, "Deleted category %s\n", c.Name)
	return nil
}

func runBudgets(_ context.Context, a *App, _ *pflag.FlagSet, _ []string) error {
	budgets := a.Store.Budgets()
	if len(budgets) == 0 {
		fmt.Fprintln(a.Out, "No budgets")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tCATEGORY\tAMOUNT\tPERIOD\tSPENT\tLEFT\t")
	for _, st := range services.BudgetStatuses(a.Store, a.Now()) {
		b := st.Budget
		flag := ""
		if st.Over {
			flag = "over"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s (%d%%)\t%s\t%s\n", b.ID, a.categoryName(b.CategoryID),
			a.Store.FormatAmount(b.Amount), b.Period, a.Store.FormatAmount(st.Spent), st.Percentage,
			a.Store.FormatAmount(st.Remaining), flag)
	}
	return w.Flush()
}

func runBudgetAdd(ctx context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	category, _ := fs.GetString("category")
	rawAmount, _ := fs.GetString("amount")
	rawPeriod, _ := fs.GetString("period")

	if err := a.checkCategory(category); err != nil {
		return err
	}
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return err
	}
	period, err := core.ParsePeriod(rawPeriod)
	if err != nil {
		return err
	}
	b := a.Store.AddBudget(ctx, core.Budget{CategoryID: category, Amount: amount, Period: period})
	fmt.Fprintf(a.Out, "Added %s budget of %s for %s (%s)\n", b.Period, a.Store.FormatAmount(b.Amount), a.categoryName(b.CategoryID), b.ID)
	return nil
}

func runBudgetDelete(ctx context.Context, a *App, _ *pflag.FlagSet, args []string) error {
	id, err := firstArg(args, "budget id")
	if err != nil {
		return err
	}
	found := false
	for _, b := range a.Store.Budgets() {
		if b.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	a.Store.DeleteBudget(ctx, id)
	fmt.Fprintf(a.Out, "Deleted budget %s\n", id)
	return nil
}
