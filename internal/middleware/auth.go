package middleware

import (
	"crypto/subtle"
	"net/http"

	"autohub-rest-api/internal/service"
	"autohub-rest-api/pkg/apierror"
)

// AdminAuthConfig holds configuration for the admin auth middleware.
type AdminAuthConfig struct {
	// TokenService validates session tokens; may be nil when Redis is
	// unavailable.
	TokenService *service.TokenService

	// LoginKey is the shared back-office secret, also accepted directly
	// per request when no token service is configured.
	LoginKey string
}

// NewAdminAuthMiddleware creates the back-office authentication middleware
// with injected dependencies. It guards admin routes only; the storefront
// surface stays public. This is a shared-secret gate, not a hardened
// security boundary.
func NewAdminAuthMiddleware(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Session token first
			token := r.Header.Get("X-Admin-Token")
			if token != "" && cfg.TokenService != nil {
				if _, err := cfg.TokenService.ValidateToken(r.Context(), token); err != nil {
					writeError(w, apierror.Unauthorized("Invalid or expired session"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Fall back to the shared login key
			loginKey := r.Header.Get("X-Login-Key")
			if loginKey == "" {
				writeError(w, apierror.Unauthorized("Authentication required. Use X-Admin-Token or X-Login-Key header."))
				return
			}

			if cfg.LoginKey == "" || subtle.ConstantTimeCompare([]byte(loginKey), []byte(cfg.LoginKey)) != 1 {
				writeError(w, apierror.Unauthorized("Invalid login key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
