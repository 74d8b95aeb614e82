// Package whitelist stores the set of accounts approved to mint while
// enforcement is on.
package whitelist

import (
	"context"
	"sync"

	"curio/internal/drop/models"
)

// InMemory is the default whitelist backend. Safe for concurrent use.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[models.Account]struct{}
}

// NewInMemory creates an empty whitelist.
func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[models.Account]struct{})}
}

// Set adds or removes an account. Both directions are idempotent.
func (w *InMemory) Set(_ context.Context, account models.Account, approved bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if approved {
		w.accounts[account] = struct{}{}
	} else {
		delete(w.accounts, account)
	}
	return nil
}

// Contains reports whether account is whitelisted.
func (w *InMemory) Contains(_ context.Context, account models.Account) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.accounts[account]
	return ok, nil
}
