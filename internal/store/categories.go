package store

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// AddCategory stores c under a fresh id, ignoring any id it carries.
func (s *Store) AddCategory(ctx context.Context, c core.Category) core.Category {
	s.mutate(ctx, log.OpCreate, func(st *State) bool {
		c.ID = s.newID()
		st.Categories = append(st.Categories, c)
		return true
	})
	return c
}

func (s *Store) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) {
	s.mutate(ctx, log.OpUpdate, func(st *State) bool {
		for i := range st.Categories {
			if st.Categories[i].ID == id {
				st.Categories[i] = patch.Apply(st.Categories[i])
				return true
			}
		}
		return false
	})
}

// DeleteCategory removes the category only. Transactions and budgets that
// reference it keep the dangling id.
func (s *Store) DeleteCategory(ctx context.Context, id string) {
	s.mutate(ctx, log.OpDelete, func(st *State) bool {
		for i := range st.Categories {
			if st.Categories[i].ID == id {
				st.Categories = append(st.Categories[:i:i], st.Categories[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.state.Categories...)
}

func (s *Store) CategoryByID(id string) (core.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.state.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}
