package api

import (
	"context"
	"net/http"

	"github.com/roomrelay/server/internal/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// requireBearer validates the Authorization header and injects the
// decoded claims into the request context.
func (a *API) requireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.ExtractBearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, Envelope{Error: AccessDenied})
			return
		}

		claims, err := a.tokens.Decode(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, Envelope{Error: AccessDenied})
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func claimsFromContext(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsContextKey).(*auth.Claims)
	return claims
}
