package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"quicktalk/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   domain.UserID
	Username string
}

func (i Identity) Participant() domain.Participant {
	return domain.Participant{ID: i.UserID, Username: i.Username}
}

// Middleware validates the bearer token of every request it wraps and injects
// the caller identity into the request context.
// Browsers cannot set headers on a websocket handshake, the token is then read
// from the "token" query parameter.
func Middleware(secret []byte, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				http.Error(w, "authorization token is missing", http.StatusUnauthorized)
				return
			}

			claims, err := ValidateToken(secret, tokenStr)
			if err != nil {
				log.Debug("Rejected token", "path", r.URL.Path, "error", err)
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the caller set by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
