// Package store is the finance store: the single owner of transactions,
// categories, budgets and the balance baseline. Every mutation goes through
// one entry point that updates memory and then persists a full snapshot.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/log"

	"github.com/google/uuid"
)

type Store struct {
	mu    sync.RWMutex
	state State
	rev   uint64

	// saveMu orders saves so an older snapshot never overwrites a newer one.
	saveMu   sync.Mutex
	savedRev uint64

	repo     Repository
	notifier Notifier
	logger   *log.Logger
	newID    func() string
	now      func() time.Time
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// WithNotifier registers a Notifier called after each successful save.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithIDGenerator replaces the UUID generator; tests use it for stable ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now for save events.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// New builds a store over st. A nil st starts from DefaultState. repo may be
// nil, in which case nothing is persisted.
func New(repo Repository, st *State, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		logger: log.Discard().WithComponent(log.ComponentStore),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	if st != nil {
		s.state = st.Clone()
	} else {
		s.state = DefaultState()
	}
	s.rev = s.state.Revision
	s.savedRev = s.rev
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open hydrates a store from repo. When the repository holds nothing the
// store starts from DefaultState.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	st, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s := New(repo, st, opts...)
	if st == nil {
		s.logger.InfoContext(ctx, "No saved state, starting from defaults",
			log.FieldOperation, log.OpLoad)
	} else {
		s.logger.InfoContext(ctx, "Store hydrated",
			log.FieldOperation, log.OpLoad,
			"transactions", len(st.Transactions),
			"categories", len(st.Categories),
			"budgets", len(st.Budgets))
	}
	return s, nil
}

// mutate is the only path that changes state. fn reports whether it changed
// anything; unchanged state is not persisted.
func (s *Store) mutate(ctx context.Context, op string, fn func(st *State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	s.rev++
	s.state.Revision = s.rev
	rev := s.rev
	snap := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, op, rev, &snap)
}

// persist saves snap best-effort: failures are logged and never reach the
// caller. The notifier only hears about snapshots that were written; with a
// queued repository that happens on its writer once the write lands.
func (s *Store) persist(ctx context.Context, op string, rev uint64, snap *State) {
	if s.repo == nil {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if rev <= s.savedRev {
		return
	}

	if q, ok := s.repo.(QueuedRepository); ok {
		err := q.SaveThen(ctx, snap, func(ctx context.Context) {
			s.notify(ctx, op, rev, snap)
		})
		if err != nil {
			s.logSaveError(ctx, op, err)
			return
		}
		s.savedRev = rev
		s.logger.DebugContext(ctx, "Snapshot queued",
			log.FieldOperation, op,
			"revision", rev)
		return
	}

	start := s.now()
	if err := s.repo.Save(ctx, snap); err != nil {
		s.logSaveError(ctx, op, err)
		return
	}
	s.savedRev = rev

	s.logger.DebugContext(ctx, "Snapshot persisted",
		log.FieldOperation, op,
		"revision", rev,
		log.FieldDuration, s.now().Sub(start).Milliseconds())

	s.notify(ctx, op, rev, snap)
}

func (s *Store) logSaveError(ctx context.Context, op string, err error) {
	fields := log.NewFields().
		WithOperation(op).
		WithError(err, log.ErrorTypeDatabase)
	s.logger.ErrorContext(ctx, "Failed to persist snapshot", fields.ToSlice()...)
}

func (s *Store) notify(ctx context.Context, op string, rev uint64, snap *State) {
	if s.notifier == nil {
		return
	}
	ev := SaveEvent{
		Revision:     rev,
		Operation:    op,
		Transactions: len(snap.Transactions),
		Categories:   len(snap.Categories),
		Budgets:      len(snap.Budgets),
		SavedAt:      s.now(),
	}
	if err := s.notifier.SnapshotSaved(ctx, ev); err != nil {
		fields := log.NewFields().
			WithOperation(log.OpPublish).
			WithError(err, log.ErrorTypeNetwork)
		s.logger.WarnContext(ctx, "Failed to notify snapshot save", fields.ToSlice()...)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Revision counts the mutations applied to the data, including those made
// by earlier processes that saved the snapshot this store was opened from.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}
