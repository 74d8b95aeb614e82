// Package audit captures key ledger actions as events. Events are
// transport-agnostic so stores and sinks can fan out.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names a state transition worth auditing.
type Action string

const (
	// Token lifecycle events.
	ActionTokenMinted      Action = "token_minted"
	ActionTokenTransferred Action = "token_transferred"
	ActionTokenApproved    Action = "token_approved"
	ActionTokenBurned      Action = "token_burned"

	// Phase and pricing events.
	ActionPhaseAdvanced Action = "phase_advanced"
	ActionPriceChanged  Action = "price_changed"
	ActionMintOpened    Action = "mint_opened"
	ActionMintClosed    Action = "mint_closed"

	// Metadata events.
	ActionPlaceholderURISet Action = "placeholder_uri_set"
	ActionTokenURIsSet      Action = "token_uris_set"

	// Access-gate events.
	ActionWhitelistUpdated         Action = "whitelist_updated"
	ActionWhitelistToggled         Action = "whitelist_enforcement_toggled"
	ActionPaused                   Action = "paused"
	ActionUnpaused                 Action = "unpaused"
	ActionAdministratorTransferred Action = "administrator_transferred"
	ActionAdministratorRenounced   Action = "administrator_renounced"
)

// Event records a single state transition. Actor is the caller that performed
// it; TokenID and Amount are zero when not applicable.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Actor     string    `json:"actor"`
	TokenID   uint64    `json:"token_id,omitempty"`
	Amount    uint64    `json:"amount,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}
