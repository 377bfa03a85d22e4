package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/frelsi/frelsi-api/internal/domain"
	jwtinfra "github.com/frelsi/frelsi-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// Auth returns middleware that validates the Bearer JWT and injects claims
// into context. Missing or expired tokens are 401 so clients know to
// re-authenticate; anything else (tampering, wrong signature) is 403.
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					writeJSONError(w, http.StatusUnauthorized, "Token expired. Please login again.")
					return
				}
				writeJSONError(w, http.StatusForbidden, "Invalid token.")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
