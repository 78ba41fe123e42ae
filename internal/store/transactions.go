package store

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// AddTransaction assigns a fresh id to n and appends it. Input is expected to
// have been validated by the caller.
func (s *Store) AddTransaction(ctx context.Context, n core.NewTransaction) core.Transaction {
	var added core.Transaction
	s.mutate(ctx, log.OpCreate, func(st *State) bool {
		added = n.Build(s.newID())
		st.Transactions = append(st.Transactions, added)
		return true
	})
	s.logger.DebugContext(ctx, "Transaction added", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(added.ID, string(added.Type), added.Amount, added.CategoryID).
		ToSlice()...)
	return added
}

// UpdateTransaction merges patch into the transaction with id. Unknown ids
// are ignored.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) {
	if patch.IsEmpty() {
		return
	}
	s.mutate(ctx, log.OpUpdate, func(st *State) bool {
		for i := range st.Transactions {
			if st.Transactions[i].ID == id {
				st.Transactions[i] = patch.Apply(st.Transactions[i])
				return true
			}
		}
		return false
	})
}

// DeleteTransaction removes the transaction with id. Deleting twice is safe.
func (s *Store) DeleteTransaction(ctx context.Context, id string) {
	s.mutate(ctx, log.OpDelete, func(st *State) bool {
		for i := range st.Transactions {
			if st.Transactions[i].ID == id {
				st.Transactions = append(st.Transactions[:i:i], st.Transactions[i+1:]...)
				return true
			}
		}
		return false
	})
}
