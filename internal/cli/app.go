package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/store"

	"github.com/spf13/pflag"
)

var (
	ErrUnknownCommand     = errors.New("unknown command")
	ErrNotFound           = errors.New("not found")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrMissingArgument    = errors.New("missing argument")
	ErrNotOnboarded       = errors.New("no profile yet, run 'fintrack onboard --name <name>' first")
	ErrNoExporters        = errors.New("no exporters selected")
	ErrWatchNotConfigured = errors.New("watch needs AMQP_URL")
)

// App holds what every command needs. Now and Exporters are replaceable in
// tests.
type App struct {
	Store  *store.Store
	Config *config.Config
	Logger *log.Logger
	Out    io.Writer
	Now    func() time.Time

	// Exporters builds the exporters named in formats.
	Exporters func(ctx context.Context, formats []string, dir string) ([]report.Exporter, error)
	// Subscribe consumes snapshot notifications until ctx is done.
	Subscribe func(ctx context.Context, handle func(context.Context, *amqp.SnapshotSavedMessage) error) error
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *App, fs *pflag.FlagSet, args []string) error
	flags   func(fs *pflag.FlagSet)
	// open commands run before onboarding.
	open bool
}

var commands []command

func register(c command) { commands = append(commands, c) }

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.Logger == nil {
		a.Logger = log.Discard()
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		return nil
	}

	cmd, ok := lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}

	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(a.Out)
	fs.Usage = func() {
		fmt.Fprintf(a.Out, "Usage: fintrack %s %s\n", cmd.name, cmd.usage)
		fs.PrintDefaults()
	}
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if !cmd.open && !a.Store.Onboarded() {
		return ErrNotOnboarded
	}

	a.Logger.DebugContext(ctx, "Running command", "command", cmd.name)
	return cmd.run(ctx, a, fs, fs.Args())
}

func (a *App) usage() {
	fmt.Fprintln(a.Out, "Usage: fintrack [--config file] <command> [flags]")
	fmt.Fprintln(a.Out)
	sorted := append([]command(nil), commands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	for _, c := range sorted {
		fmt.Fprintf(w, "  %s\t%s\n", c.name, c.summary)
	}
	w.Flush()
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
}

// monthFlags registers --month (1-12) and --year, defaulting to now.
func monthFlags(fs *pflag.FlagSet) {
	fs.IntP("month", "m", 0, "month number 1-12 (default current month)")
	fs.IntP("year", "y", 0, "year (default current year)")
}

// selectedMonth reads monthFlags and returns the 0-indexed month and year.
func (a *App) selectedMonth(fs *pflag.FlagSet) (int, int, error) {
	now := a.Now()
	month, _ := fs.GetInt("month")
	year, _ := fs.GetInt("year")
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}
	return month - 1, year, nil
}

func (a *App) categoryName(id string) string {
	if c, ok := a.Store.CategoryByID(id); ok {
		return c.Name
	}
	return core.UncategorizedName
}

func firstArg(args []string, what string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, what)
	}
	return args[0], nil
}
