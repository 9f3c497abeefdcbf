package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nayab-Gohar-95/llm-saas-backend/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyPrincipal stores the authenticated principal
const ContextKeyPrincipal ContextKey = "principal"

// PrincipalFromContext returns the principal injected by RequireAuth, or nil
// when the request was not authenticated.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	principal, _ := ctx.Value(ContextKeyPrincipal).(*auth.Principal)
	return principal
}

// RequireAuth is middleware that validates a Bearer credential and injects
// the resolved principal into the request context. Every request re-validates
// the subject against persistence, so deletion or role changes take effect
// immediately rather than at credential expiry.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			principal, err := s.guard.Authenticate(r.Context(), parts[1])
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin narrows an authenticated request to the admin role. Must be
// chained after RequireAuth.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if _, err := s.guard.RequireAdmin(principal); err != nil {
				writeError(w, err)
				return
			}
			next(w, r)
		}
	}
}
