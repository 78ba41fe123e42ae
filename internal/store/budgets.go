package store

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Budgets are kept and persisted but no aggregate reads them.

func (s *Store) AddBudget(ctx context.Context, b core.Budget) core.Budget {
	s.mutate(ctx, log.OpCreate, func(st *State) bool {
		b.ID = s.newID()
		st.Budgets = append(st.Budgets, b)
		return true
	})
	return b
}

func (s *Store) UpdateBudget(ctx context.Context, id string, patch core.BudgetPatch) {
	s.mutate(ctx, log.OpUpdate, func(st *State) bool {
		for i := range st.Budgets {
			if st.Budgets[i].ID == id {
				st.Budgets[i] = patch.Apply(st.Budgets[i])
				return true
			}
		}
		return false
	})
}

func (s *Store) DeleteBudget(ctx context.Context, id string) {
	s.mutate(ctx, log.OpDelete, func(st *State) bool {
		for i := range st.Budgets {
			if st.Budgets[i].ID == id {
				st.Budgets = append(st.Budgets[:i:i], st.Budgets[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *Store) Budgets() []core.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Budget(nil), s.state.Budgets...)
}
