package store

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"

	"github.com/shopspring/decimal"
)

// SetInitialBalance overwrites the balance baseline.
func (s *Store) SetInitialBalance(ctx context.Context, v decimal.Decimal) {
	s.mutate(ctx, log.OpUpdate, func(st *State) bool {
		st.InitialBalance = v
		return true
	})
}

// SetCurrency changes display formatting only; stored amounts are untouched.
func (s *Store) SetCurrency(ctx context.Context, c core.Currency) {
	s.mutate(ctx, log.OpUpdate, func(st *State) bool {
		st.Currency = c
		return true
	})
}

// SetUser records the profile captured during onboarding.
func (s *Store) SetUser(ctx context.Context, u core.User) {
	s.mutate(ctx, log.OpUpdate, func(st *State) bool {
		st.User = u
		return true
	})
}

func (s *Store) InitialBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.InitialBalance
}

func (s *Store) Currency() core.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Currency
}

func (s *Store) User() core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

// Onboarded reports whether a user name has been recorded.
func (s *Store) Onboarded() bool {
	return s.User().Name != ""
}
