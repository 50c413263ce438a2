package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/frontdesk/internal/models"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
)

type contextKey string

const SessionContextKey contextKey = "session"

// SessionRevocationChecker reports whether a session was logged out.
type SessionRevocationChecker interface {
	IsSessionRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireSession admits requests carrying a valid, unrevoked session cookie.
// A failed revocation lookup denies access.
func RequireSession(tm *TokenManager, revocation SessionRevocationChecker, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetSessionCookie(r)
			if token == "" {
				pkghttp.WriteUnauthorized(w, "PIN verification required")
				return
			}

			claims, err := tm.ValidateSession(token)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "PIN verification required")
				return
			}

			if revocation != nil {
				revoked, err := revocation.IsSessionRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.Error("session revocation check failed", slog.Any("error", err))
					pkghttp.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Unable to verify session")
					return
				}
				if revoked {
					pkghttp.WriteUnauthorized(w, "PIN verification required")
					return
				}
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSessionFromContext(ctx context.Context) *models.SessionClaims {
	claims, ok := ctx.Value(SessionContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
