package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

type (
	TransactionType string

	// Period is the recurrence window a budget applies to.
	Period string

	Transaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		CategoryID  string          `json:"categoryId"`
		Date        time.Time       `json:"date"`
		Description string          `json:"description,omitempty"`
	}

	// NewTransaction carries the caller-supplied fields of a transaction; the
	// store assigns the ID.
	NewTransaction struct {
		Amount      decimal.Decimal
		Type        TransactionType
		CategoryID  string
		Date        time.Time
		Description string
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}

	Budget struct {
		ID         string          `json:"id"`
		CategoryID string          `json:"categoryId"`
		Amount     decimal.Decimal `json:"amount"`
		Period     Period          `json:"period"`
	}

	User struct {
		Name string `json:"name"`
	}

	// Currency selects display formatting only; stored amounts are unit-less.
	Currency struct {
		Code   string `json:"code"`
		Symbol string `json:"symbol"`
		Locale string `json:"locale"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidPeriod   = errors.New("invalid budget period")
	ErrEmptyUserName   = errors.New("empty user name")
	ErrEmptyCategory   = errors.New("empty category name")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrUnknownCurrency = errors.New("unknown currency")
)

// Signed returns the amount as it contributes to a balance: positive for
// income, negative for expense.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Build turns the caller-supplied fields into a transaction with the given id.
func (n NewTransaction) Build(id string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      n.Amount,
		Type:        n.Type,
		CategoryID:  n.CategoryID,
		Date:        n.Date,
		Description: n.Description,
	}
}

func (tt TransactionType) Valid() bool {
	return tt == Income || tt == Expense
}

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	tt := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !tt.Valid() {
		return "", ErrInvalidType
	}
	return tt, nil
}

func (p Period) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// ParsePeriod accepts "weekly", "monthly" or "yearly" in any case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidPeriod
	}
	return p, nil
}

// ValidateUserName rejects blank names entered during onboarding.
func ValidateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyUserName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	return nil
}
