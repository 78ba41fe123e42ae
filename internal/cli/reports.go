package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/report"

	"github.com/spf13/pflag"
)

func init() {
	register(command{
		name:    "balance",
		summary: "Show the current balance",
		run:     runBalance,
	})
	register(command{
		name:    "stats",
		usage:   "[--month 1-12 --year YYYY]",
		summary: "Month totals and spending by category",
		flags:   monthFlags,
		run:     runStats,
	})
	register(command{
		name:    "trend",
		usage:   "[--months 6] [--month 1-12 --year YYYY]",
		summary: "Income and expense over recent months",
		flags: func(fs *pflag.FlagSet) {
			monthFlags(fs)
			fs.Int("months", report.TrendMonths, "number of months")
		},
		run: runTrend,
	})
	register(command{
		name:    "export",
		usage:   "[--month 1-12 --year YYYY] [--format xlsx,csv,sheets] [--dir path]",
		summary: "Export a month report",
		flags: func(fs *pflag.FlagSet) {
			monthFlags(fs)
			fs.StringSlice("format", []string{"xlsx", "csv"}, "exporters to run: xlsx, csv, sheets")
			fs.String("dir", "", "output directory (default EXPORT_DIR)")
		},
		run: runExport,
	})
	register(command{
		name:    "watch",
		summary: "Print a line for every saved snapshot (needs AMQP_URL)",
		open:    true,
		run:     runWatch,
	})
}

func runBalance(_ context.Context, a *App, _ *pflag.FlagSet, _ []string) error {
	if u := a.Store.User(); u.Name != "" {
		fmt.Fprintf(a.Out, "Hello, %s\n", u.Name)
	}
	fmt.Fprintf(a.Out, "Current balance: %s\n", a.Store.FormatAmount(a.Store.CurrentBalance()))
	return nil
}

func runStats(_ context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	month, year, err := a.selectedMonth(fs)
	if err != nil {
		return err
	}
	rep, err := report.BuildMonth(a.Store, month, year)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, rep.Title())
	w := a.table()
	fmt.Fprintf(w, "Income\t%s\n", rep.Format(rep.Totals.Income))
	fmt.Fprintf(w, "Expense\t%s\n", rep.Format(rep.Totals.Expense))
	fmt.Fprintf(w, "Balance\t%s\n", rep.Format(rep.Totals.Balance))
	w.Flush()

	if len(rep.Breakdown) == 0 {
		fmt.Fprintln(a.Out, "No spending this month")
		return nil
	}
	fmt.Fprintln(a.Out)
	w = a.table()
	for _, s := range rep.Breakdown {
		fmt.Fprintf(w, "%s\t%s\t%d%%\n", s.Name, rep.Format(s.Amount), s.Percentage)
	}
	return w.Flush()
}

func runTrend(_ context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	month, year, err := a.selectedMonth(fs)
	if err != nil {
		return err
	}
	n, _ := fs.GetInt("months")
	if n < 1 {
		return fmt.Errorf("--months must be at least 1, got %d", n)
	}
	w := a.table()
	fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSE")
	for _, p := range a.Store.MonthlyTrend(month, year, n) {
		fmt.Fprintf(w, "%s %d\t%s\t%s\n", p.Ref.ShortName(), p.Ref.Year,
			a.Store.FormatAmount(p.Income), a.Store.FormatAmount(p.Expense))
	}
	return w.Flush()
}

func runExport(ctx context.Context, a *App, fs *pflag.FlagSet, _ []string) error {
	month, year, err := a.selectedMonth(fs)
	if err != nil {
		return err
	}
	formats, _ := fs.GetStringSlice("format")
	dir, _ := fs.GetString("dir")
	if dir == "" && a.Config != nil {
		dir = a.Config.ExportDir
	}

	build := a.Exporters
	if build == nil {
		build = func(ctx context.Context, formats []string, dir string) ([]report.Exporter, error) {
			return BuildExporters(ctx, a.Config, a.Logger, formats, dir)
		}
	}
	exporters, err := build(ctx, formats, dir)
	if err != nil {
		return err
	}
	if len(exporters) == 0 {
		return ErrNoExporters
	}

	rep, err := report.BuildMonth(a.Store, month, year)
	if err != nil {
		return err
	}
	if a.Config != nil && a.Config.ExportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.ExportTimeout)
		defer cancel()
	}

	results, err := report.ExportAll(ctx, a.Logger, rep, exporters...)
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
		}
		fmt.Fprintf(a.Out, "%-6s %s (%s)\n", r.Exporter, status, r.Duration.Round(time.Millisecond))
	}
	return err
}

// BuildExporters maps format names to exporters. "sheets" needs a spreadsheet
// id and service account credentials in cfg.
func BuildExporters(ctx context.Context, cfg *config.Config, logger *log.Logger, formats []string, dir string) ([]report.Exporter, error) {
	var out []report.Exporter
	seen := map[string]bool{}
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true

		switch f {
		case "xlsx":
			out = append(out, report.XLSXExporter{Dir: dir})
		case "csv":
			out = append(out, report.CSVExporter{Dir: dir})
		case "sheets":
			if cfg == nil || !cfg.SheetsEnabled() {
				return nil, fmt.Errorf("sheets export needs GOOGLE_SPREADSHEET_ID")
			}
			creds, err := report.CredentialsOption(cfg.GoogleServiceAccountFile, cfg.GoogleServiceAccountJSON)
			if err != nil {
				return nil, err
			}
			ex, err := report.NewSheetsExporter(ctx, cfg.GoogleSpreadsheetID, logger, creds)
			if err != nil {
				return nil, err
			}
			out = append(out, ex)
		default:
			return nil, fmt.Errorf("unknown export format %q: want xlsx, csv or sheets", f)
		}
	}
	return out, nil
}

func runWatch(ctx context.Context, a *App, _ *pflag.FlagSet, _ []string) error {
	subscribe := a.Subscribe
	if subscribe == nil {
		if a.Config == nil || a.Config.AMQPURL == "" {
			return ErrWatchNotConfigured
		}
		client, err := amqp.NewClient(a.Config.AMQPURL, a.Config.AMQPExchange, a.Config.AMQPQueue, a.Logger)
		if err != nil {
			return err
		}
		defer client.Close()
		subscribe = client.Subscribe
	}

	fmt.Fprintln(a.Out, "Watching for saved snapshots, Ctrl+C to stop")
	err := subscribe(ctx, func(_ context.Context, msg *amqp.SnapshotSavedMessage) error {
		fmt.Fprintf(a.Out, "%s  rev %d  %s  %d transactions, %d categories, %d budgets\n",
			msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Revision, msg.Operation,
			msg.Transactions, msg.Categories, msg.Budgets)
		return nil
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
