package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/kalindhi/kalindhi-api/internal/models"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// ClaimsContextKey is the key for storing token claims in context
	ClaimsContextKey contextKey = "claims"
)

const (
	msgAuthRequired    = "Authentication required"
	msgInvalidToken    = "Invalid or expired token"
	msgAdminRequired   = "Admin access denied"
	msgMainAdminNeeded = "Only the main administrator can perform this action"
)

// TokenValidator verifies a bearer token
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.TokenClaims, error)
}

// AuthMiddleware validates the bearer token and injects its claims into the
// request context. Any failure answers 401.
func AuthMiddleware(tv TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, msgAuthRequired)
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				pkghttp.WriteUnauthorized(w, msgInvalidToken)
				return
			}

			claims, err := tv.ValidateToken(strings.TrimSpace(tokenString))
			if err != nil {
				pkghttp.WriteUnauthorized(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin rejects tokens without the admin role marker.
// Must be used after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if claims == nil {
			pkghttp.WriteUnauthorized(w, msgAuthRequired)
			return
		}

		if !claims.IsAdmin {
			pkghttp.WriteForbidden(w, msgAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireMainAdmin restricts a route to the Main Administrator, matched by
// exact email. An empty mainAdminEmail locks the route for everyone.
func RequireMainAdmin(mainAdminEmail string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				pkghttp.WriteUnauthorized(w, msgAuthRequired)
				return
			}

			if !IsMainAdmin(claims, mainAdminEmail) {
				pkghttp.WriteForbidden(w, msgMainAdminNeeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IsMainAdmin reports whether claims belong to the Main Administrator
func IsMainAdmin(claims *models.TokenClaims, mainAdminEmail string) bool {
	return claims != nil && claims.IsAdmin && mainAdminEmail != "" && claims.Email == mainAdminEmail
}

// GetClaimsFromContext extracts token claims from a request context
func GetClaimsFromContext(ctx context.Context) *models.TokenClaims {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithClaims returns a copy of ctx carrying claims
func WithClaims(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}
