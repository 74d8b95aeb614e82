package service

import (
	"context"
	"errors"

	"curio/internal/drop/models"
	dErrors "curio/pkg/domain-errors"
	audit "curio/pkg/platform/audit"
	"curio/pkg/platform/sentinel"
)

func (s *Service) getToken(ctx context.Context, id uint64) (*models.Token, error) {
	token, err := s.ledger.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token")
	}
	return token, nil
}

// Transfer moves a token the caller owns (or is approved for) to another
// account. Blocked while paused; clears any standing approval.
func (s *Service) Transfer(ctx context.Context, caller, to models.Account, id uint64) error {
	ctx, span := s.tracer.Start(ctx, "drop.transfer")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	if err := state.RequireNotPaused(); err != nil {
		return err
	}

	token, err := s.getToken(ctx, id)
	if err != nil {
		return err
	}
	if !token.CanOperate(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller may not transfer this token")
	}

	if err := s.ledger.Transfer(ctx, token.Owner, to, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer token")
	}

	s.logger.InfoContext(ctx, "token transferred",
		"token_id", id,
		"from", token.Owner,
		"to", to,
	)
	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionTokenTransferred,
		Actor:   caller.String(),
		TokenID: id,
	})
	return nil
}

// Approve lets the token's owner designate one account that may transfer or
// burn the token on their behalf.
func (s *Service) Approve(ctx context.Context, caller, spender models.Account, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.getToken(ctx, id)
	if err != nil {
		return err
	}
	if token.Owner != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "only the owner may approve")
	}

	if err := s.ledger.SetApproved(ctx, id, spender); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set approval")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionTokenApproved,
		Actor:   caller.String(),
		TokenID: id,
	})
	return nil
}

// Burn destroys a token. The ID is retired permanently; the issuance counter
// does not move, so the slot is never reallocated.
func (s *Service) Burn(ctx context.Context, caller models.Account, id uint64) error {
	ctx, span := s.tracer.Start(ctx, "drop.burn")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	if err := state.RequireNotPaused(); err != nil {
		return err
	}

	token, err := s.getToken(ctx, id)
	if err != nil {
		return err
	}
	if !token.CanOperate(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller may not burn this token")
	}

	if err := s.ledger.Destroy(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to burn token")
	}

	s.logger.InfoContext(ctx, "token burned", "token_id", id, "by", caller)
	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionTokenBurned,
		Actor:   caller.String(),
		TokenID: id,
	})
	if s.metrics != nil {
		s.metrics.IncrementBurned()
	}
	return nil
}

// GetToken returns a single ownership record.
func (s *Service) GetToken(ctx context.Context, id uint64) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getToken(ctx, id)
}

// TokensOf enumerates the live tokens owned by an account, ordered by ID.
func (s *Service) TokensOf(ctx context.Context, account models.Account) ([]models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.ledger.OwnedBy(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tokens")
	}
	return tokens, nil
}

// CollectionState is the public snapshot of the drop.
type CollectionState struct {
	*models.Collection
	TotalSupply uint64 `json:"total_supply"`
}

// State returns a consistent snapshot of the collection plus the count of
// live (unburned) tokens.
func (s *Service) State(ctx context.Context) (*CollectionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}
	supply, err := s.ledger.TotalSupply(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count supply")
	}
	return &CollectionState{Collection: state, TotalSupply: supply}, nil
}
