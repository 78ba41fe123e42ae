// Package memory keeps the encoded snapshot in process memory. Useful for
// tests and throwaway sessions.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/store"
)

type Repository struct {
	mu     sync.Mutex
	record []byte
	saves  int
}

func New() *Repository {
	return &Repository{}
}

// NewSeeded starts with st already saved.
func NewSeeded(st *store.State) (*Repository, error) {
	b, err := store.Encode(st)
	if err != nil {
		return nil, err
	}
	return &Repository{record: b}, nil
}

// Load decodes the last saved record. It returns nil when nothing was saved.
func (r *Repository) Load(_ context.Context) (*store.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil {
		return nil, nil
	}
	return store.Decode(r.record)
}

// Save encodes st so later mutations of the caller's copy are not visible.
func (r *Repository) Save(_ context.Context, st *store.State) error {
	b, err := store.Encode(st)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record = b
	r.saves++
	return nil
}

// Saves counts successful Save calls.
func (r *Repository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// Bytes returns a copy of the raw persisted record.
func (r *Repository) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.record...)
}
