// Package treasury is the fund-movement collaborator: it forwards collected
// mint payments to the administrator. The ledger core treats it as a
// pre-built primitive and only depends on Forward.
package treasury

import (
	"context"
	"sync"

	"curio/internal/drop/models"
	"curio/pkg/platform/sentinel"
)

// InMemory tracks account balances in the smallest native value unit.
type InMemory struct {
	mu       sync.Mutex
	balances map[models.Account]uint64
}

// NewInMemory creates an empty treasury.
func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[models.Account]uint64)}
}

// Credit adds funds to an account. Used to seed balances and in tests.
func (t *InMemory) Credit(_ context.Context, account models.Account, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[account] += amount
}

// Balance returns the current balance of an account.
func (t *InMemory) Balance(_ context.Context, account models.Account) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

// Forward moves amount from one account to another in a single step. Returns
// sentinel.ErrInsufficientFunds without any movement when from cannot cover
// the amount.
func (t *InMemory) Forward(_ context.Context, from, to models.Account, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[from] < amount {
		return sentinel.ErrInsufficientFunds
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}
