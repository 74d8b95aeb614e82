package models

import (
	"strings"

	dErrors "curio/pkg/domain-errors"
)

const maxURILength = 2048

func validateURI(uri string) error {
	if uri == "" {
		return dErrors.New(dErrors.CodeValidation, "uri is required")
	}
	if len(uri) > maxURILength {
		return dErrors.New(dErrors.CodeValidation, "uri must be 2048 characters or less")
	}
	return nil
}

type MintRequest struct {
	Payment uint64 `json:"payment"`
}

type AdvancePhaseRequest struct {
	Limit uint64 `json:"limit"`
	Price uint64 `json:"price"`
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *AdvancePhaseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Limit == 0 {
		return dErrors.New(dErrors.CodeValidation, "limit is required")
	}
	return nil
}

type SetPriceRequest struct {
	Price uint64 `json:"price"`
}

type SetMintOpenRequest struct {
	Open bool `json:"open"`
}

type SetPlaceholderURIRequest struct {
	URI string `json:"uri"`
}

func (r *SetPlaceholderURIRequest) Normalize() {
	if r == nil {
		return
	}
	r.URI = strings.TrimSpace(r.URI)
}

func (r *SetPlaceholderURIRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validateURI(r.URI)
}

type SetTokenURIsRequest struct {
	TokenIDs []uint64 `json:"token_ids"`
	URIs     []string `json:"uris"`
}

func (r *SetTokenURIsRequest) Normalize() {
	if r == nil {
		return
	}
	for i, uri := range r.URIs {
		r.URIs[i] = strings.TrimSpace(uri)
	}
}

// Follows validation order: Size -> Required -> Syntax -> Semantic. The
// length-mismatch check is a distinct error kind because callers batch these
// pairs programmatically and need to distinguish it from a bad URI.
func (r *SetTokenURIsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.TokenIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "token_ids is required")
	}
	if len(r.TokenIDs) != len(r.URIs) {
		return dErrors.New(dErrors.CodeLengthMismatch, "token_ids and uris must have the same length")
	}
	for _, uri := range r.URIs {
		if err := validateURI(uri); err != nil {
			return err
		}
	}
	return nil
}

type SetWhitelistRequest struct {
	Account  string `json:"account"`
	Approved bool   `json:"approved"`
}

func (r *SetWhitelistRequest) Normalize() {
	if r == nil {
		return
	}
	r.Account = strings.TrimSpace(r.Account)
}

func (r *SetWhitelistRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	_, err := ParseAccount(r.Account)
	return err
}

type TransferRequest struct {
	To string `json:"to"`
}

func (r *TransferRequest) Normalize() {
	if r == nil {
		return
	}
	r.To = strings.TrimSpace(r.To)
}

func (r *TransferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	_, err := ParseAccount(r.To)
	return err
}

type ApproveRequest struct {
	Spender string `json:"spender"`
}

func (r *ApproveRequest) Normalize() {
	if r == nil {
		return
	}
	r.Spender = strings.TrimSpace(r.Spender)
}

func (r *ApproveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	_, err := ParseAccount(r.Spender)
	return err
}

type TransferAdminRequest struct {
	To string `json:"to"`
}

func (r *TransferAdminRequest) Normalize() {
	if r == nil {
		return
	}
	r.To = strings.TrimSpace(r.To)
}

func (r *TransferAdminRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	_, err := ParseAccount(r.To)
	return err
}
