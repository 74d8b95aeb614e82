package models

import "time"

// Token is a single ownership record in the ledger. Approved, when set, names
// one account besides the owner allowed to transfer or burn this token; it is
// cleared on every ownership change.
type Token struct {
	ID       uint64    `json:"id"`
	Owner    Account   `json:"owner"`
	URI      string    `json:"uri"`
	Approved Account   `json:"approved,omitempty"`
	MintedAt time.Time `json:"minted_at"`
}

// CanOperate reports whether caller may move or destroy this token.
func (t *Token) CanOperate(caller Account) bool {
	return caller == t.Owner || (!t.Approved.IsZero() && caller == t.Approved)
}
