package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/currency"

	"github.com/shopspring/decimal"
)

// Namespace is the storage key the snapshot is persisted under.
const Namespace = "finance-app-storage"

// SchemaVersion is written with every snapshot. Decode rejects newer versions.
const SchemaVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// State is everything the store owns. It is also the unit of persistence.
// Revision counts the mutations applied over the life of the data, so it
// keeps growing across processes that load the same snapshot.
type State struct {
	Revision       uint64             `json:"revision,omitempty"`
	Transactions   []core.Transaction `json:"transactions"`
	Categories     []core.Category    `json:"categories"`
	Budgets        []core.Budget      `json:"budgets"`
	InitialBalance decimal.Decimal    `json:"initialBalance"`
	Currency       core.Currency      `json:"currency"`
	User           core.User          `json:"user"`
}

// DefaultState is the state of a store that has never been saved.
func DefaultState() State {
	return State{
		Transactions:   []core.Transaction{},
		Categories:     core.DefaultCategories(),
		Budgets:        []core.Budget{},
		InitialBalance: decimal.Zero,
		Currency:       currency.Default(),
	}
}

// Clone returns a copy that shares no slices with st.
func (st State) Clone() State {
	out := st
	out.Transactions = append(make([]core.Transaction, 0, len(st.Transactions)), st.Transactions...)
	out.Categories = append(make([]core.Category, 0, len(st.Categories)), st.Categories...)
	out.Budgets = append(make([]core.Budget, 0, len(st.Budgets)), st.Budgets...)
	return out
}

type record struct {
	Version int `json:"version"`
	State
}

// Encode serialises a snapshot into the persisted record layout.
func Encode(st *State) ([]byte, error) {
	b, err := json.Marshal(record{Version: SchemaVersion, State: *st})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Decode parses a persisted record. A record without a version is treated as
// version 1; missing collections come back empty, not nil.
func Decode(data []byte) (*State, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if rec.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}

	st := rec.State
	if st.Transactions == nil {
		st.Transactions = []core.Transaction{}
	}
	if st.Categories == nil {
		st.Categories = []core.Category{}
	}
	if st.Budgets == nil {
		st.Budgets = []core.Budget{}
	}
	if st.Currency.Code == "" {
		st.Currency = currency.Default()
	}
	return &st, nil
}
