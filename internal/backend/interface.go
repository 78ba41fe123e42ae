// Package backend assembles the persistence stack the store runs on.
package backend

import (
	"context"

	"fintrack/internal/store"
)

// CleanupFunc releases resources held by a backend. It flushes pending
// async saves, so pass a context with a deadline.
type CleanupFunc func(ctx context.Context) error

// BackendResult is everything needed to open a store.
type BackendResult struct {
	Repository store.Repository
	// Notifier is nil when AMQP is not configured or unreachable.
	Notifier store.Notifier
	Cleanup  CleanupFunc
}

// StoreOptions returns the store options matching the result.
func (r *BackendResult) StoreOptions() []store.Option {
	if r.Notifier == nil {
		return nil
	}
	return []store.Option{store.WithNotifier(r.Notifier)}
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FileBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
