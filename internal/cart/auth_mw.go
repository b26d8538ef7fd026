package cart

import (
	"context"
	"net/http"
	"strings"

	"AslyStore/internal/auth"
	"AslyStore/pkg/kit"
)

type ctxKey string

const ownerKey ctxKey = "owner"

func OwnerFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ownerKey).(string)
	return v, ok && v != ""
}

// RequireUserHeaders trusts the owner identity injected by the gateway.
func RequireUserHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(kit.HeaderUserID))
		if owner == "" {
			kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, owner)))
	})
}

// AuthJWT takes the owner from the forwarded bearer token. A gateway
// identity header, when present, must name the same user.
func AuthJWT(jwt *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := jwt.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}
			if h := strings.TrimSpace(r.Header.Get(kit.HeaderUserID)); h != "" && h != claims.UserID {
				kit.WriteError(w, r, http.StatusUnauthorized, "user mismatch", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, claims.UserID)))
		})
	}
}
