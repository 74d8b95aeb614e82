package models

import (
	"strings"

	dErrors "curio/pkg/domain-errors"
)

// Account identifies a caller. The ledger does not interpret the format
// beyond basic shape checks; it only compares accounts for equality.
type Account string

// NoAccount is the null identity. It owns nothing and can never act; it only
// appears as the administrator slot after renouncement.
const NoAccount Account = ""

func (a Account) String() string {
	return string(a)
}

// IsZero reports whether the account is the null identity.
func (a Account) IsZero() bool {
	return a == NoAccount
}

// ParseAccount validates and normalizes an account identifier.
func ParseAccount(raw string) (Account, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NoAccount, dErrors.New(dErrors.CodeValidation, "account is required")
	}
	if len(raw) > 128 {
		return NoAccount, dErrors.New(dErrors.CodeValidation, "account must be 128 characters or less")
	}
	if strings.ContainsAny(raw, " \t\n") {
		return NoAccount, dErrors.New(dErrors.CodeValidation, "account must not contain whitespace")
	}
	return Account(raw), nil
}
