package store

import (
	"context"
	"time"
)

// Ports for outbound adapters.
type (
	// Repository is the durable home of the snapshot.
	Repository interface {
		// Load returns the last saved state, or nil when nothing was saved yet.
		Load(ctx context.Context) (*State, error)
		// Save replaces the stored state with st.
		Save(ctx context.Context, st *State) error
	}

	// QueuedRepository writes in the background. SaveThen returns once st is
	// queued and calls onSaved after st itself was written. A snapshot that is
	// superseded before it is written never triggers its onSaved.
	QueuedRepository interface {
		Repository
		SaveThen(ctx context.Context, st *State, onSaved func(ctx context.Context)) error
	}

	// Notifier is told after every successful save.
	Notifier interface {
		SnapshotSaved(ctx context.Context, ev SaveEvent) error
	}
)

// SaveEvent describes a snapshot that reached the repository.
type SaveEvent struct {
	Revision     uint64
	Operation    string
	Transactions int
	Categories   int
	Budgets      int
	SavedAt      time.Time
}
