package core

import (
	"context"
	"net/http"

	"github.com/caasmo/daybook/db"
)

// contextKey is a type for context keys
type contextKey string

const identityKey contextKey = "identity"

// JwtValidate validates the facade token and stores the authenticated
// identity in the request context.
func (a *App) JwtValidate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err, resp := a.Auth().Authenticate(r)
		if err != nil {
			writeJsonError(w, resp)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFromContext returns the identity stored by JwtValidate, nil
// when the request did not pass through it.
func identityFromContext(ctx context.Context) *db.Identity {
	identity, _ := ctx.Value(identityKey).(*db.Identity)
	return identity
}
