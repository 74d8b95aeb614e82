package testutil

import (
	"net/http"

	"curio/internal/platform/middleware"
)

// WithAccount adds an authenticated account to the request context, simulating
// what the bearer-token middleware does for authenticated requests.
func WithAccount(req *http.Request, account string) *http.Request {
	if account == "" {
		return req
	}
	return req.WithContext(middleware.WithAccount(req.Context(), account))
}
