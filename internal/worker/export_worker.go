// Package worker keeps month reports current by re-exporting them whenever
// the store publishes a snapshot.
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/store"

	"golang.org/x/sync/errgroup"
)

// Loader reads the latest persisted snapshot. store.Repository satisfies it.
type Loader interface {
	Load(ctx context.Context) (*store.State, error)
}

// Subscriber delivers snapshot notifications until ctx is done.
type Subscriber func(ctx context.Context, handle func(context.Context, *amqp.SnapshotSavedMessage) error) error

// ExportWorker re-exports the current month from the persisted snapshot. It
// never writes to the repository.
type ExportWorker struct {
	source    Loader
	exporters []report.Exporter
	logger    *log.Logger
	now       func() time.Time

	mu sync.Mutex
	// last is the encoded snapshot of the most recent successful export.
	last []byte
}

func NewExportWorker(source Loader, exporters []report.Exporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		source:    source,
		exporters: exporters,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       time.Now,
	}
}

// HandleSnapshotSaved processes one notification from AMQP. Export failures
// are logged and left for the next periodic sync rather than requeued.
func (w *ExportWorker) HandleSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	w.logger.InfoContext(ctx, "Processing snapshot notification",
		"namespace", msg.Namespace,
		"revision", msg.Revision,
		log.FieldOperation, msg.Operation)

	if msg.Namespace != "" && msg.Namespace != store.Namespace {
		w.logger.WarnContext(ctx, "Ignoring notification for another namespace", "namespace", msg.Namespace)
		return nil
	}
	if _, err := w.Sync(ctx); err != nil {
		if errors.Is(err, errLoad) {
			return err
		}
		w.logger.ErrorContext(ctx, "Export after notification failed", "error", err)
	}
	return nil
}

var errLoad = errors.New("load snapshot")

// Sync exports the current month when the persisted snapshot differs from
// the one last exported. It reports whether an export ran.
func (w *ExportWorker) Sync(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, err := w.source.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", errLoad, err)
	}
	if st == nil {
		w.logger.DebugContext(ctx, "No snapshot persisted yet")
		return false, nil
	}
	payload, err := store.Encode(st)
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}
	if bytes.Equal(payload, w.last) {
		w.logger.DebugContext(ctx, "Snapshot unchanged since last export")
		return false, nil
	}

	ref := core.MonthOf(w.now())
	rep, err := report.BuildMonth(store.New(nil, st), ref.Month, ref.Year)
	if err != nil {
		return false, err
	}
	if _, err := report.ExportAll(ctx, w.logger, rep, w.exporters...); err != nil {
		return false, err
	}
	w.last = payload

	w.logger.InfoContext(ctx, "Month report exported",
		log.NewFields().WithMonth(ref.Month, ref.Year).ToSlice()...)
	return true, nil
}

// Run performs a startup sync, then serves notifications from subscribe and
// a periodic sync every interval until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context, subscribe Subscriber, interval time.Duration) error {
	if _, err := w.Sync(ctx); err != nil {
		// Don't exit - the periodic sync retries
		w.logger.ErrorContext(ctx, "Startup export failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := w.Sync(ctx); err != nil {
					w.logger.ErrorContext(ctx, "Periodic export failed", "error", err)
				}
			}
		}
	})
	if subscribe != nil {
		g.Go(func() error {
			err := subscribe(ctx, w.HandleSnapshotSaved)
			if ctx.Err() != nil {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
