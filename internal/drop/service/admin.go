package service

import (
	"context"
	"errors"
	"fmt"

	"curio/internal/drop/models"
	dErrors "curio/pkg/domain-errors"
	audit "curio/pkg/platform/audit"
	"curio/pkg/platform/sentinel"
)

// mutateState runs an administrator-gated transition: load, authorize, apply,
// persist. The apply callback returns the audit action to emit, or an error
// to abort with nothing written.
func (s *Service) mutateState(ctx context.Context, caller models.Account, apply func(state *models.Collection) (audit.Event, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	if err := state.RequireAdministrator(caller); err != nil {
		return err
	}

	event, err := apply(state)
	if err != nil {
		return err
	}

	if err := s.state.Save(ctx, state); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist collection state")
	}

	event.Actor = caller.String()
	s.logAudit(ctx, event)
	if s.metrics != nil {
		s.metrics.SetPhase(state.Phase)
	}
	return nil
}

// AdvancePhase raises the cumulative supply ceiling and sets the new price.
func (s *Service) AdvancePhase(ctx context.Context, caller models.Account, newLimit, newPrice uint64) error {
	return s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		if err := state.CanAdvancePhase(newLimit); err != nil {
			return audit.Event{}, err
		}
		state.ApplyAdvancePhase(newLimit, newPrice)
		s.logger.InfoContext(ctx, "phase advanced",
			"phase", state.Phase,
			"limit", newLimit,
			"price", newPrice,
		)
		return audit.Event{
			Action: audit.ActionPhaseAdvanced,
			Detail: fmt.Sprintf("phase=%d limit=%d price=%d", state.Phase, newLimit, newPrice),
		}, nil
	})
}

// SetPrice changes the mint price without opening a new phase.
func (s *Service) SetPrice(ctx context.Context, caller models.Account, price uint64) error {
	return s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		state.ApplySetPrice(price)
		return audit.Event{
			Action: audit.ActionPriceChanged,
			Amount: price,
		}, nil
	})
}

// SetMintOpen toggles the global mint gate.
func (s *Service) SetMintOpen(ctx context.Context, caller models.Account, open bool) error {
	return s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		state.ApplySetMintOpen(open)
		action := audit.ActionMintClosed
		if open {
			action = audit.ActionMintOpened
		}
		return audit.Event{Action: action}, nil
	})
}

// SetPlaceholderURI changes the URI future mints are created with. Already
// minted tokens keep theirs until individually overridden.
func (s *Service) SetPlaceholderURI(ctx context.Context, caller models.Account, uri string) error {
	return s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		state.ApplySetPlaceholderURI(uri)
		return audit.Event{Action: audit.ActionPlaceholderURISet, Detail: uri}, nil
	})
}

// SetTokenURIs overwrites metadata for a batch of tokens. The batch is
// all-or-nothing: every entry is checked against the ledger before anything
// is written, so a bad entry aborts with no URI changed.
func (s *Service) SetTokenURIs(ctx context.Context, caller models.Account, ids []uint64, uris []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	if err := state.RequireAdministrator(caller); err != nil {
		return err
	}
	if len(ids) != len(uris) {
		return dErrors.New(dErrors.CodeLengthMismatch, "token_ids and uris must have the same length")
	}

	for _, id := range ids {
		if _, err := s.ledger.Get(ctx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("token %d not found", id))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token")
		}
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		for i, id := range ids {
			if err := s.ledger.SetURI(txCtx, id, uris[i]); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set token URI")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.Event{
		Action: audit.ActionTokenURIsSet,
		Actor:  caller.String(),
		Detail: fmt.Sprintf("count=%d", len(ids)),
	})
	return nil
}

// SetWhitelist adds or removes a single account from the whitelist.
func (s *Service) SetWhitelist(ctx context.Context, caller, account models.Account, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	if err := state.RequireAdministrator(caller); err != nil {
		return err
	}
	if err := s.whitelist.Set(ctx, account, approved); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update whitelist")
	}

	s.logAudit(ctx, audit.Event{
		Action: audit.ActionWhitelistUpdated,
		Actor:  caller.String(),
		Detail: fmt.Sprintf("account=%s approved=%t", account, approved),
	})
	return nil
}

// ToggleWhitelistEnforcement flips the enforcement flag and returns the new
// value.
func (s *Service) ToggleWhitelistEnforcement(ctx context.Context, caller models.Account) (bool, error) {
	var enabled bool
	err := s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		state.ApplySetWhitelistEnabled(!state.WhitelistOn)
		enabled = state.WhitelistOn
		return audit.Event{
			Action: audit.ActionWhitelistToggled,
			Detail: fmt.Sprintf("enabled=%t", enabled),
		}, nil
	})
	return enabled, err
}

// Pause sets the global transfer gate; minting and all ownership moves fail
// until Unpause.
func (s *Service) Pause(ctx context.Context, caller models.Account) error {
	return s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		state.ApplyPause()
		return audit.Event{Action: audit.ActionPaused}, nil
	})
}

// Unpause clears the global transfer gate.
func (s *Service) Unpause(ctx context.Context, caller models.Account) error {
	return s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		state.ApplyUnpause()
		return audit.Event{Action: audit.ActionUnpaused}, nil
	})
}

// TransferAdministrator hands the administrator role to another account.
func (s *Service) TransferAdministrator(ctx context.Context, caller, to models.Account) error {
	return s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		if err := state.CanTransferAdministrator(to); err != nil {
			return audit.Event{}, err
		}
		state.ApplyTransferAdministrator(to)
		s.logger.InfoContext(ctx, "administrator transferred", "to", to)
		return audit.Event{
			Action: audit.ActionAdministratorTransferred,
			Detail: fmt.Sprintf("to=%s", to),
		}, nil
	})
}

// RenounceAdministrator permanently vacates the administrator role. This is
// irreversible: no administrator-gated call can succeed afterward.
func (s *Service) RenounceAdministrator(ctx context.Context, caller models.Account) error {
	return s.mutateState(ctx, caller, func(state *models.Collection) (audit.Event, error) {
		state.ApplyRenounceAdministrator()
		s.logger.WarnContext(ctx, "administrator role renounced; all admin operations are now permanently disabled")
		return audit.Event{Action: audit.ActionAdministratorRenounced}, nil
	})
}
