// Package domainerrors provides coded domain errors. Services return these so
// transports can map failures to protocol responses without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a distinct failure condition. Codes are part of the API
// contract: handlers translate them to HTTP statuses and response bodies,
// tests assert on them, and they are never coerced into one another.
type Code string

const (
	// Generic codes.
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeForbidden  Code = "forbidden"
	CodeInternal   Code = "internal_error"

	// Invariant violations raised by model constructors and transitions.
	CodeInvariantViolation Code = "invariant_violation"

	// Minting and access-gate codes. Each maps 1:1 to a precondition of the
	// drop state machine.
	CodeMintingClosed      Code = "minting_closed"
	CodeNotWhitelisted     Code = "not_whitelisted"
	CodeWrongPayment       Code = "wrong_payment"
	CodePhaseLimitExceeded Code = "phase_limit_exceeded"
	CodeCapExceeded        Code = "cap_exceeded"
	CodePhaseNotIncreasing Code = "phase_not_increasing"
	CodeUnauthorized       Code = "unauthorized"
	CodePaused             Code = "paused"
	CodeLengthMismatch     Code = "length_mismatch"
	CodeFundTransfer       Code = "fund_transfer_failed"
)

// Error is a domain error with a stable code and human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates err with a domain code and message while preserving the
// underlying error for errors.Is/As chains.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is a readability alias for HasCode, used at call sites that read like
// errors.Is.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost domain code carried by err, or CodeInternal
// when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain message, or empty when err is not a
// domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
