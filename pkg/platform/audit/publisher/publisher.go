// Package publisher delivers audit events to a store, synchronously by default
// or through a buffered worker when configured.
package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "curio/pkg/platform/audit"
)

// Store is the persistence surface the publisher writes to.
type Store interface {
	Save(ctx context.Context, event audit.Event) error
}

// Publisher emits audit events. In async mode a full buffer drops events
// rather than blocking the caller's request path.
type Publisher struct {
	store Store

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures a Publisher.
type Option func(p *Publisher)

// WithAsyncBuffer enables asynchronous delivery through a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, n)
	}
}

// NewPublisher constructs a Publisher writing to store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit delivers an event. Missing IDs and timestamps are filled in here so
// callers only describe the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if p.buffer == nil {
		return p.store.Save(ctx, event)
	}

	select {
	case p.buffer <- event:
	default:
		// Buffer full: audit delivery must not stall the ledger.
	}
	return nil
}

// Close drains any buffered events and stops the worker.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		_ = p.store.Save(context.Background(), event)
	}
}
