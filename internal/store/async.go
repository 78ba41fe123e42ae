package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"fintrack/internal/log"
)

var ErrRepositoryClosed = errors.New("repository closed")

// AsyncRepository makes saves fire-and-forget. Save hands the snapshot to a
// single background writer and returns immediately; if saves arrive faster
// than the writer drains them only the newest pending snapshot is written.
type AsyncRepository struct {
	inner   Repository
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *State
	onSaved func(ctx context.Context)
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewAsyncRepository starts the background writer. Call Close to flush and
// stop it.
func NewAsyncRepository(inner Repository, logger *log.Logger) *AsyncRepository {
	if logger == nil {
		logger = log.Discard()
	}
	r := &AsyncRepository{
		inner:   inner,
		logger:  logger.WithComponent(log.ComponentStorage),
		timeout: 10 * time.Second,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Load reads straight from the wrapped repository.
func (r *AsyncRepository) Load(ctx context.Context) (*State, error) {
	return r.inner.Load(ctx)
}

// Save queues st for writing. The error only reports a closed repository;
// write failures are logged by the background writer.
func (r *AsyncRepository) Save(ctx context.Context, st *State) error {
	return r.SaveThen(ctx, st, nil)
}

// SaveThen queues st like Save and runs onSaved on the writer goroutine once
// st is written. A newer snapshot queued before the write replaces both st
// and onSaved.
func (r *AsyncRepository) SaveThen(_ context.Context, st *State, onSaved func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRepositoryClosed
	}
	r.pending = st
	r.onSaved = onSaved
	select {
	case r.wake <- struct{}{}:
	default:
	}
	return nil
}

func (r *AsyncRepository) run() {
	defer close(r.done)
	for range r.wake {
		r.flush()
	}
	r.flush()
}

func (r *AsyncRepository) flush() {
	r.mu.Lock()
	st, onSaved := r.pending, r.onSaved
	r.pending, r.onSaved = nil, nil
	r.mu.Unlock()
	if st == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.inner.Save(ctx, st); err != nil {
		fields := log.NewFields().
			WithOperation(log.OpSave).
			WithError(err, log.ErrorTypeDatabase)
		r.logger.Error("Background save failed", fields.ToSlice()...)
		return
	}
	if onSaved != nil {
		onSaved(ctx)
	}
}

// Close stops accepting saves, writes whatever is pending and waits for the
// writer to exit or ctx to expire.
func (r *AsyncRepository) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.wake)
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
