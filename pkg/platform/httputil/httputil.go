// Package httputil centralizes JSON response and domain-error translation for
// HTTP handlers so every endpoint returns the same error envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "curio/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeLengthMismatch:     http.StatusBadRequest,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeUnauthorized:       http.StatusForbidden,
	dErrors.CodeNotWhitelisted:     http.StatusForbidden,
	dErrors.CodeWrongPayment:       http.StatusPaymentRequired,
	dErrors.CodeMintingClosed:      http.StatusConflict,
	dErrors.CodePaused:             http.StatusConflict,
	dErrors.CodePhaseLimitExceeded: http.StatusConflict,
	dErrors.CodeCapExceeded:        http.StatusUnprocessableEntity,
	dErrors.CodePhaseNotIncreasing: http.StatusUnprocessableEntity,
	dErrors.CodeInvariantViolation: http.StatusUnprocessableEntity,
	dErrors.CodeFundTransfer:       http.StatusBadGateway,
	dErrors.CodeInternal:           http.StatusInternalServerError,
}

// WriteError renders a domain error as a JSON envelope. Internal errors omit
// the description so infrastructure details never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		code = dErrors.CodeInternal
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
