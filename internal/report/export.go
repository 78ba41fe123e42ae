package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/log"

	"golang.org/x/sync/errgroup"
)

const maxParallelExports = 4

// Result is the outcome of one exporter.
type Result struct {
	Exporter string
	Duration time.Duration
	Err      error
}

// ExportAll runs every exporter concurrently. A failing exporter does not
// cancel the others; all failures are joined into the returned error.
func ExportAll(ctx context.Context, logger *log.Logger, rep MonthReport, exporters ...Exporter) ([]Result, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentReport)

	results := make([]Result, len(exporters))
	var g errgroup.Group
	g.SetLimit(maxParallelExports)
	for i, ex := range exporters {
		g.Go(func() error {
			start := time.Now()
			err := ex.Export(ctx, rep)
			results[i] = Result{Exporter: ex.Name(), Duration: time.Since(start), Err: err}

			fields := log.NewFields().WithOperation(log.OpExport).WithMonth(rep.Ref.Month, rep.Ref.Year)
			fields[log.FieldExporter] = ex.Name()
			fields[log.FieldDuration] = results[i].Duration.Milliseconds()
			if err != nil {
				logger.ErrorContext(ctx, "Export failed", fields.WithError(err, log.ErrorTypeInternal).ToSlice()...)
				return nil
			}
			logger.InfoContext(ctx, "Export completed", fields.ToSlice()...)
			return nil
		})
	}
	g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Exporter, r.Err))
		}
	}
	return results, errors.Join(errs...)
}
