package models

import (
	dErrors "curio/pkg/domain-errors"
)

// AdministratorStatus tracks the privileged identity slot.
type AdministratorStatus string

const (
	// AdministratorActive means a concrete account holds the role.
	AdministratorActive AdministratorStatus = "active"
	// AdministratorRenounced is terminal: no administrator-gated call can
	// ever succeed again. This is intentional, not a recoverable state.
	AdministratorRenounced AdministratorStatus = "renounced"
)

// Administrator is the single privileged slot. Modeled as an explicit
// status + account pair rather than a sentinel empty account so the terminal
// renounced state is visible in state dumps and API responses.
type Administrator struct {
	Status  AdministratorStatus `json:"status"`
	Account Account             `json:"account,omitempty"`
}

// Collection is the aggregate root for the drop: the token-ID counter, phase
// parameters, supply cap, and every access-gate flag.
//
// Invariants:
//   - Minted only ever increases; token IDs are Minted-ordered starting at 1
//     and never reused, even after a burn
//   - Minted ≤ PhaseLimit ≤ Cap at every mint
//   - PhaseLimit is non-decreasing across phase advances
//   - Cap is immutable after construction
//
// The issuance counter doubles as the supply figure the phase checks compare
// against. Keeping one counter for both is deliberate: "tokens minted so far"
// equals "highest token ID", so admissibility is a single comparison. Do not
// split ID allocation from supply counting.
type Collection struct {
	Phase          uint64        `json:"phase"`
	PhaseLimit     uint64        `json:"phase_limit"`
	Price          uint64        `json:"price"`
	Cap            uint64        `json:"cap"`
	Minted         uint64        `json:"minted"`
	MintOpen       bool          `json:"mint_open"`
	WhitelistOn    bool          `json:"whitelist_on"`
	Paused         bool          `json:"paused"`
	PlaceholderURI string        `json:"placeholder_uri"`
	Admin          Administrator `json:"admin"`
}

// NewCollection constructs the initial drop state. The cap is fixed here and
// can never change afterward.
func NewCollection(admin Account, cap, phaseLimit, price uint64, placeholderURI string) (*Collection, error) {
	if admin.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "administrator account is required")
	}
	if cap == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mint cap must be positive")
	}
	if phaseLimit > cap {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "initial phase limit exceeds cap")
	}
	if placeholderURI == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "placeholder URI is required")
	}
	return &Collection{
		Phase:          1,
		PhaseLimit:     phaseLimit,
		Price:          price,
		Cap:            cap,
		MintOpen:       false,
		PlaceholderURI: placeholderURI,
		Admin:          Administrator{Status: AdministratorActive, Account: admin},
	}, nil
}

// RequireAdministrator fails unless caller currently holds the administrator
// role. After renouncement this fails for every caller.
func (c *Collection) RequireAdministrator(caller Account) error {
	if c.Admin.Status != AdministratorActive || c.Admin.Account != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the administrator")
	}
	return nil
}

// RequireNotPaused fails while the global pause flag is set. Every operation
// that moves token ownership consults this, minting included.
func (c *Collection) RequireNotPaused() error {
	if c.Paused {
		return dErrors.New(dErrors.CodePaused, "transfers are paused")
	}
	return nil
}

// CanMint checks admissibility of a mint without mutating state. whitelisted
// is the caller's membership in the whitelist set; it is only consulted when
// enforcement is on.
func (c *Collection) CanMint(payment uint64, whitelisted bool) error {
	if !c.MintOpen {
		return dErrors.New(dErrors.CodeMintingClosed, "minting is closed")
	}
	if c.WhitelistOn && !whitelisted {
		return dErrors.New(dErrors.CodeNotWhitelisted, "caller is not whitelisted")
	}
	if payment != c.Price {
		return dErrors.New(dErrors.CodeWrongPayment, "payment must equal mint price")
	}
	if c.Minted+1 > c.PhaseLimit {
		return dErrors.New(dErrors.CodePhaseLimitExceeded, "phase limit reached")
	}
	return nil
}

// ApplyMint allocates the next token ID. Call CanMint first.
func (c *Collection) ApplyMint() uint64 {
	c.Minted++
	return c.Minted
}

// CanAdvancePhase checks the phase-advance preconditions: the new limit must
// stay under the cap and strictly exceed what has already been minted.
func (c *Collection) CanAdvancePhase(newLimit uint64) error {
	if newLimit > c.Cap {
		return dErrors.New(dErrors.CodeCapExceeded, "phase limit exceeds mint cap")
	}
	if newLimit <= c.Minted {
		return dErrors.New(dErrors.CodePhaseNotIncreasing, "phase limit must exceed current supply")
	}
	return nil
}

// ApplyAdvancePhase opens a new phase. Call CanAdvancePhase first.
func (c *Collection) ApplyAdvancePhase(newLimit, newPrice uint64) {
	c.PhaseLimit = newLimit
	c.Price = newPrice
	c.Phase++
}

// ApplySetPrice changes the mint price without opening a new phase.
func (c *Collection) ApplySetPrice(price uint64) {
	c.Price = price
}

// ApplySetMintOpen toggles the global mint gate.
func (c *Collection) ApplySetMintOpen(open bool) {
	c.MintOpen = open
}

// ApplySetPlaceholderURI changes the URI assigned to future mints.
func (c *Collection) ApplySetPlaceholderURI(uri string) {
	c.PlaceholderURI = uri
}

// ApplySetWhitelistEnabled flips whitelist enforcement.
func (c *Collection) ApplySetWhitelistEnabled(on bool) {
	c.WhitelistOn = on
}

// ApplyPause and ApplyUnpause set the global transfer gate. Both are
// unconditional: re-pausing a paused collection is a no-op, not an error.
func (c *Collection) ApplyPause()   { c.Paused = true }
func (c *Collection) ApplyUnpause() { c.Paused = false }

// CanTransferAdministrator validates the new administrator identity.
func (c *Collection) CanTransferAdministrator(to Account) error {
	if to.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "new administrator account is required; use renounce for the terminal state")
	}
	return nil
}

// ApplyTransferAdministrator hands the role to another account.
func (c *Collection) ApplyTransferAdministrator(to Account) {
	c.Admin = Administrator{Status: AdministratorActive, Account: to}
}

// ApplyRenounceAdministrator permanently vacates the role. There is no way
// back: every administrator-gated call fails from here on.
func (c *Collection) ApplyRenounceAdministrator() {
	c.Admin = Administrator{Status: AdministratorRenounced}
}

// Clone returns a copy safe to hand out without exposing internal state.
func (c *Collection) Clone() *Collection {
	cp := *c
	return &cp
}
