// Package handler exposes the drop over HTTP. It stays thin: decode,
// authenticate, delegate to the service, translate errors.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"curio/internal/drop/models"
	"curio/internal/drop/service"
	"curio/internal/platform/middleware"
	dErrors "curio/pkg/domain-errors"
	"curio/pkg/platform/httputil"
)

// Service is the drop surface the handler delegates to.
type Service interface {
	Mint(ctx context.Context, caller models.Account, payment uint64) (*models.Token, error)
	Transfer(ctx context.Context, caller, to models.Account, id uint64) error
	Approve(ctx context.Context, caller, spender models.Account, id uint64) error
	Burn(ctx context.Context, caller models.Account, id uint64) error
	GetToken(ctx context.Context, id uint64) (*models.Token, error)
	TokensOf(ctx context.Context, account models.Account) ([]models.Token, error)
	State(ctx context.Context) (*service.CollectionState, error)

	AdvancePhase(ctx context.Context, caller models.Account, newLimit, newPrice uint64) error
	SetPrice(ctx context.Context, caller models.Account, price uint64) error
	SetMintOpen(ctx context.Context, caller models.Account, open bool) error
	SetPlaceholderURI(ctx context.Context, caller models.Account, uri string) error
	SetTokenURIs(ctx context.Context, caller models.Account, ids []uint64, uris []string) error
	SetWhitelist(ctx context.Context, caller, account models.Account, approved bool) error
	ToggleWhitelistEnforcement(ctx context.Context, caller models.Account) (bool, error)
	Pause(ctx context.Context, caller models.Account) error
	Unpause(ctx context.Context, caller models.Account) error
	TransferAdministrator(ctx context.Context, caller, to models.Account) error
	RenounceAdministrator(ctx context.Context, caller models.Account) error
}

// Handler handles drop endpoints.
type Handler struct {
	drop      Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

// New creates a drop Handler.
func New(drop Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		drop:      drop,
		logger:    logger,
		validator: validator,
	}
}

// Register mounts the drop routes on the chi router. Collection and token
// reads are public; everything that moves state requires a bearer token. The
// administrator routes use the same authentication, the service decides
// whether the caller holds the role.
func (h *Handler) Register(r chi.Router) {
	r.Get("/collection", h.handleGetCollection)
	r.Get("/tokens/{id}", h.handleGetToken)
	r.Get("/accounts/{account}/tokens", h.handleListTokens)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccount(h.validator, h.logger))

		r.Post("/mint", h.handleMint)
		r.Post("/tokens/{id}/transfer", h.handleTransfer)
		r.Post("/tokens/{id}/approve", h.handleApprove)
		r.Post("/tokens/{id}/burn", h.handleBurn)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/phase", h.handleAdvancePhase)
			r.Put("/price", h.handleSetPrice)
			r.Put("/mint-open", h.handleSetMintOpen)
			r.Put("/placeholder-uri", h.handleSetPlaceholderURI)
			r.Put("/uris", h.handleSetTokenURIs)
			r.Put("/whitelist", h.handleSetWhitelist)
			r.Post("/whitelist/toggle", h.handleToggleWhitelist)
			r.Post("/pause", h.handlePause)
			r.Post("/unpause", h.handleUnpause)
			r.Post("/transfer", h.handleTransferAdmin)
			r.Post("/renounce", h.handleRenounceAdmin)
		})
	})
}

func (h *Handler) caller(ctx context.Context) models.Account {
	return models.Account(middleware.GetAccount(ctx))
}

func tokenIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "token id must be a positive integer")
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.MintRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, err := h.drop.Mint(ctx, h.caller(ctx), req.Payment)
	if err != nil {
		h.logger.WarnContext(ctx, "mint rejected",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, token)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := tokenIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.TransferRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.Transfer(ctx, h.caller(ctx), models.Account(req.To), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := tokenIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.ApproveRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.Approve(ctx, h.caller(ctx), models.Account(req.Spender), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := tokenIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.Burn(ctx, h.caller(ctx), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetToken(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, err := h.drop.GetToken(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, token)
}

func (h *Handler) handleListTokens(w http.ResponseWriter, r *http.Request) {
	account, err := models.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tokens, err := h.drop.TokensOf(r.Context(), account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if tokens == nil {
		tokens = []models.Token{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (h *Handler) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	state, err := h.drop.State(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) handleAdvancePhase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.AdvancePhaseRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.AdvancePhase(ctx, h.caller(ctx), req.Limit, req.Price); err != nil {
		h.logger.WarnContext(ctx, "phase advance rejected",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SetPriceRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.SetPrice(ctx, h.caller(ctx), req.Price); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetMintOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SetMintOpenRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.SetMintOpen(ctx, h.caller(ctx), req.Open); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetPlaceholderURI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SetPlaceholderURIRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.SetPlaceholderURI(ctx, h.caller(ctx), req.URI); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetTokenURIs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SetTokenURIsRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.SetTokenURIs(ctx, h.caller(ctx), req.TokenIDs, req.URIs); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetWhitelist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SetWhitelistRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.SetWhitelist(ctx, h.caller(ctx), models.Account(req.Account), req.Approved); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggleWhitelist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	enabled, err := h.drop.ToggleWhitelistEnforcement(ctx, h.caller(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.drop.Pause(ctx, h.caller(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.drop.Unpause(ctx, h.caller(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.TransferAdminRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.drop.TransferAdministrator(ctx, h.caller(ctx), models.Account(req.To)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRenounceAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.drop.RenounceAdministrator(ctx, h.caller(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "administrator renounced via API",
		"request_id", middleware.GetRequestID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}
