package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "gifttable/internal/delivery/http/helpers"
	"gifttable/internal/domain"
)

type contextKey string

const adminKey contextKey = "admin"

// SetAdmin returns a context carrying the verified admin claims. Used by auth middleware.
func SetAdmin(ctx context.Context, claims *domain.AdminClaims) context.Context {
	return context.WithValue(ctx, adminKey, claims)
}

// AdminFromContext returns the authenticated admin from the context, if present.
func AdminFromContext(ctx context.Context) (*domain.AdminClaims, bool) {
	claims, ok := ctx.Value(adminKey).(*domain.AdminClaims)
	return claims, ok && claims != nil
}

// RequireAdmin returns a wrapper that validates the Bearer token and sets the admin claims in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAdmin(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "admin token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetAdmin(r.Context(), claims)))
		}
	}
}
