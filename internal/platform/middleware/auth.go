package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator resolves a bearer token to the account it authenticates.
type TokenValidator interface {
	ValidateToken(tokenString string) (string, error)
}

type contextKeyAccount struct{}

var ctxKeyAccount = contextKeyAccount{}

// GetAccount retrieves the authenticated account from the context.
func GetAccount(ctx context.Context) string {
	account, ok := ctx.Value(ctxKeyAccount).(string)
	if !ok {
		return ""
	}
	return account
}

// WithAccount stores an account in the context. Exported for handler tests.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, ctxKeyAccount, account)
}

// RequireAccount authenticates the caller via a bearer token and stores the
// resolved account in the request context.
func RequireAccount(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				unauthorized(w, r, logger, "missing or malformed Authorization header")
				return
			}

			account, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				unauthorized(w, r, logger, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`)); err != nil {
		logger.ErrorContext(r.Context(), "failed to write unauthorized response",
			"error", err,
			"request_id", GetRequestID(r.Context()),
		)
	}
}
