// Package drop ties the issuance ledger together: collection state machine,
// ownership ledger, whitelist, and the HTTP surface.
package drop

import (
	"log/slog"

	"curio/internal/drop/handler"
	"curio/internal/drop/service"
	"curio/internal/platform/middleware"
)

// Service exposes the drop state machine.
type Service = service.Service

// Handler wires HTTP endpoints to the drop service.
type Handler = handler.Handler

// Option configures the drop service.
type Option = service.Option

var (
	WithLogger         = service.WithLogger
	WithAuditPublisher = service.WithAuditPublisher
	WithMetrics        = service.WithMetrics
	WithTxRunner       = service.WithTxRunner
)

// NewService constructs the drop service with its collaborators.
func NewService(state service.StateStore, ledger service.Ledger, whitelist service.Whitelist, treasury service.Treasury, opts ...Option) *Service {
	return service.New(state, ledger, whitelist, treasury, opts...)
}

// NewHandler constructs the HTTP handler for the drop routes.
func NewHandler(s *Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return handler.New(s, logger, validator)
}
