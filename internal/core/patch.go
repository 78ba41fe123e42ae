package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionPatch lists the mutable fields of a transaction. Nil fields are
// left untouched by Apply.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Type        *TransactionType
	CategoryID  *string
	Date        *time.Time
	Description *string
}

func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	return t
}

// IsEmpty reports whether the patch would change nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Amount == nil && p.Type == nil && p.CategoryID == nil && p.Date == nil && p.Description == nil
}

type CategoryPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	return c
}

type BudgetPatch struct {
	CategoryID *string
	Amount     *decimal.Decimal
	Period     *Period
}

func (p BudgetPatch) Apply(b Budget) Budget {
	if p.CategoryID != nil {
		b.CategoryID = *p.CategoryID
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	return b
}

// Ptr returns a pointer to v; handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
