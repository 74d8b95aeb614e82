package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborators return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not policy failures:
// - ErrNotFound: record does not exist in store
// - ErrConflict: record already exists (duplicate token ID, whitelist entry)
// - ErrInvalidState: record in wrong state for requested operation
// - ErrInsufficientFunds: account balance cannot cover a transfer
// - ErrUnavailable: backing service temporarily unavailable
//
// Policy failures (minting closed, phase limits, authorization) are coded
// domain errors raised by the service layer, never sentinels.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnavailable       = errors.New("unavailable")
)
