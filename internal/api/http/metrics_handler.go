package http

import (
	"net/http"

	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/domain"
)

// adminOnly guards a net/http handler with the session cookie. It runs behind
// fiber's adaptor, so the identity is read from the *http.Request directly.
func adminOnly(resolver *auth.SessionResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := resolver.ResolveCookies(r)
		if !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if identity.Role != domain.RoleAdmin {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
