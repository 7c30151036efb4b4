package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jhasumit/busline/internal/http/response"
	"github.com/jhasumit/busline/pkg/logger"
)

type ctxKey string

const (
	ctxCustomerID ctxKey = "customer_id"
	ctxToken      ctxKey = "session_token"
)

// SessionResolver turns a bearer token into the customer it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// RequireSession resolves the bearer session token once and stores the
// authenticated customer ID in the request context.
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "missing or invalid session token in the header")
				return
			}
			token := strings.TrimPrefix(authz, "Bearer ")

			customerID, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				response.Domain(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxCustomerID, customerID)
			ctx = context.WithValue(ctx, ctxToken, token)
			ctx = context.WithValue(ctx, logger.CustomerIDKey, customerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerID returns the authenticated customer for requests that passed
// through RequireSession.
func CustomerID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(ctxCustomerID).(int64)
	return id, ok
}

// SessionToken returns the raw bearer token for the current request.
func SessionToken(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(ctxToken).(string)
	return token, ok
}
