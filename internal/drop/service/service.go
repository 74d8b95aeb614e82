// Package service orchestrates the drop: it owns the admissibility checks and
// the single mutual-exclusion boundary around every state transition.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	dropmetrics "curio/internal/drop/metrics"
	"curio/internal/drop/models"
	"curio/internal/platform/middleware"
	dErrors "curio/pkg/domain-errors"
	audit "curio/pkg/platform/audit"
	"curio/pkg/platform/sentinel"
	"curio/pkg/platform/tx"
)

// Ledger is the ownership-ledger collaborator. It records who owns which
// token and the token's metadata; it never decides admissibility.
type Ledger interface {
	Create(ctx context.Context, token *models.Token) error
	Get(ctx context.Context, id uint64) (*models.Token, error)
	Transfer(ctx context.Context, from, to models.Account, id uint64) error
	SetURI(ctx context.Context, id uint64, uri string) error
	SetApproved(ctx context.Context, id uint64, spender models.Account) error
	Destroy(ctx context.Context, id uint64) error
	OwnedBy(ctx context.Context, account models.Account) ([]models.Token, error)
	TotalSupply(ctx context.Context) (uint64, error)
}

// StateStore persists the collection aggregate.
type StateStore interface {
	Load(ctx context.Context) (*models.Collection, error)
	Save(ctx context.Context, state *models.Collection) error
}

// Whitelist is the set of accounts approved to mint while enforcement is on.
type Whitelist interface {
	Set(ctx context.Context, account models.Account, approved bool) error
	Contains(ctx context.Context, account models.Account) (bool, error)
}

// Treasury forwards collected payments.
type Treasury interface {
	Forward(ctx context.Context, from, to models.Account, amount uint64) error
}

// AuditPublisher records state transitions for external consumers.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the drop state machine. All mutating operations run under one
// mutex scoped to the whole collection (counter, phase fields, whitelist
// flag, pause flag, ledger writes) so each call commits atomically or not at
// all; reads take the same mutex for a consistent snapshot.
type Service struct {
	mu sync.Mutex

	state     StateStore
	ledger    Ledger
	whitelist Whitelist
	treasury  Treasury

	logger  *slog.Logger
	auditor AuditPublisher
	metrics *dropmetrics.Metrics
	runner  tx.Runner
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *dropmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTxRunner scopes multi-store writes to a database transaction. Defaults
// to the no-op runner for in-memory deployments.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// New constructs a Service.
func New(state StateStore, ledger Ledger, whitelist Whitelist, treasury Treasury, opts ...Option) *Service {
	s := &Service{
		state:     state,
		ledger:    ledger,
		whitelist: whitelist,
		treasury:  treasury,
		runner:    tx.NopRunner{},
		tracer:    otel.Tracer("curio/drop"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Bootstrap seeds the state store with the initial collection when none is
// persisted yet. Existing state wins so restarts keep the live counter.
func (s *Service) Bootstrap(ctx context.Context, initial *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.state.Load(ctx)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load collection state")
	}
	if err := s.state.Save(ctx, initial); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed collection state")
	}
	return nil
}

func (s *Service) loadState(ctx context.Context) (*models.Collection, error) {
	state, err := s.state.Load(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load collection state")
	}
	return state, nil
}

func isNotFound(err error) bool {
	return err != nil && (dErrors.HasCode(err, dErrors.CodeNotFound) ||
		errors.Is(err, sentinel.ErrNotFound))
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
