package service

import (
	"context"
	"time"

	"curio/internal/drop/models"
	dErrors "curio/pkg/domain-errors"
	audit "curio/pkg/platform/audit"
)

// Mint allocates the next token ID for caller against the current phase.
// Gate order: pause, mint-open, whitelist, exact payment, phase limit. The
// payment is forwarded to the administrator in the same atomic step; if the
// funds cannot move, the mint never happened.
func (s *Service) Mint(ctx context.Context, caller models.Account, payment uint64) (*models.Token, error) {
	ctx, span := s.tracer.Start(ctx, "drop.mint")
	defer span.End()

	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}

	if err := state.RequireNotPaused(); err != nil {
		s.countMintRejected(err)
		return nil, err
	}

	whitelisted := false
	if state.WhitelistOn {
		whitelisted, err = s.whitelist.Contains(ctx, caller)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check whitelist")
		}
	}

	if err := state.CanMint(payment, whitelisted); err != nil {
		s.countMintRejected(err)
		return nil, err
	}

	admin := state.Admin.Account
	prev := state.Clone()
	id := state.ApplyMint()
	token := &models.Token{
		ID:       id,
		Owner:    caller,
		URI:      state.PlaceholderURI,
		MintedAt: time.Now().UTC(),
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ledger.Create(txCtx, token); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record token")
		}
		if err := s.state.Save(txCtx, state); err != nil {
			_ = s.ledger.Destroy(txCtx, token.ID)
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist collection state")
		}
		// Payment moves last: every other effect can still be unwound here,
		// so a failed forward leaves no trace of the mint.
		if err := s.treasury.Forward(txCtx, caller, admin, payment); err != nil {
			_ = s.ledger.Destroy(txCtx, token.ID)
			_ = s.state.Save(txCtx, prev)
			return dErrors.Wrap(err, dErrors.CodeFundTransfer, "failed to forward payment")
		}
		return nil
	})
	if err != nil {
		s.countMintRejected(err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "token minted",
		"token_id", token.ID,
		"owner", caller,
		"phase", state.Phase,
		"payment", payment,
	)
	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionTokenMinted,
		Actor:   caller.String(),
		TokenID: token.ID,
		Amount:  payment,
	})
	s.observeMint(start, state)

	return token, nil
}

func (s *Service) countMintRejected(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementMintRejected(string(dErrors.CodeOf(err)))
}

func (s *Service) observeMint(start time.Time, state *models.Collection) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementMinted()
	s.metrics.ObserveMintDuration(start)
	s.metrics.SetSupply(state.Minted)
	s.metrics.SetPhase(state.Phase)
}
