// Package state persists the collection aggregate: phase parameters, flags,
// the issuance counter, and the administrator slot.
package state

import (
	"context"
	"sync"

	"curio/internal/drop/models"
	"curio/pkg/platform/sentinel"
)

// InMemory holds the collection state for single-node deployments and tests.
type InMemory struct {
	mu    sync.RWMutex
	state *models.Collection
}

// NewInMemory creates an empty store; Load fails until the first Save.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Load returns a copy of the stored collection state.
func (s *InMemory) Load(_ context.Context) (*models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, sentinel.ErrNotFound
	}
	return s.state.Clone(), nil
}

// Save replaces the stored collection state.
func (s *InMemory) Save(_ context.Context, state *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	return nil
}
