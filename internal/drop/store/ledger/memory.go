// Package ledger implements the ownership ledger: token → (owner, URI)
// records with create, transfer, destroy, and enumeration.
package ledger

import (
	"context"
	"sort"
	"sync"

	"curio/internal/drop/models"
	"curio/pkg/platform/sentinel"
)

// InMemory is the default ledger backend. Safe for concurrent use.
type InMemory struct {
	mu     sync.RWMutex
	tokens map[uint64]models.Token
}

// NewInMemory creates an empty ledger.
func NewInMemory() *InMemory {
	return &InMemory{tokens: make(map[uint64]models.Token)}
}

// Create records a new token. Returns sentinel.ErrConflict if the ID already
// has a record.
func (l *InMemory) Create(_ context.Context, token *models.Token) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.tokens[token.ID]; ok {
		return sentinel.ErrConflict
	}
	l.tokens[token.ID] = *token
	return nil
}

// Get returns the record for a token ID.
func (l *InMemory) Get(_ context.Context, id uint64) (*models.Token, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	token, ok := l.tokens[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &token, nil
}

// Transfer moves ownership. Fails with sentinel.ErrInvalidState unless from
// currently owns the token. Clears any standing approval.
func (l *InMemory) Transfer(_ context.Context, from, to models.Account, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	token, ok := l.tokens[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if token.Owner != from {
		return sentinel.ErrInvalidState
	}
	token.Owner = to
	token.Approved = models.NoAccount
	l.tokens[id] = token
	return nil
}

// SetURI overwrites metadata for an existing token.
func (l *InMemory) SetURI(_ context.Context, id uint64, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	token, ok := l.tokens[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	token.URI = uri
	l.tokens[id] = token
	return nil
}

// SetApproved records the single account allowed to operate the token besides
// its owner. Pass models.NoAccount to clear.
func (l *InMemory) SetApproved(_ context.Context, id uint64, spender models.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	token, ok := l.tokens[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	token.Approved = spender
	l.tokens[id] = token
	return nil
}

// Destroy removes the record and its URI. The ID is never handed out again;
// allocation happens upstream of the ledger.
func (l *InMemory) Destroy(_ context.Context, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.tokens[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(l.tokens, id)
	return nil
}

// OwnedBy returns the live tokens owned by account, ordered by ID.
func (l *InMemory) OwnedBy(_ context.Context, account models.Account) ([]models.Token, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []models.Token
	for _, token := range l.tokens {
		if token.Owner == account {
			out = append(out, token)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// TotalSupply returns the count of currently existing records.
func (l *InMemory) TotalSupply(_ context.Context) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.tokens)), nil
}
