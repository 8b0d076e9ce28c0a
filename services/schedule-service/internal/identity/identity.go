// Package identity resolves the caller from a bearer token once, at
// the edge of the request, and threads the result through the context.
// Handlers read it back with FromContext and never touch the token.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/shearbook/shearbook/libs/auth"
)

// Roles the token issuer assigns. Barbers run the shop; clients only
// see their own bookings.
const (
	RoleBarber = "barber"
	RoleClient = "client"
)

// Identity is the verified caller. It is immutable after middleware
// sets it.
type Identity struct {
	ActorID  string
	TenantID string
	Role     string
}

type ctxKey struct{}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// ContextWith returns ctx carrying id. Exported for handler tests.
func ContextWith(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware verifies the Authorization header and injects the caller.
// HS256 tokens verify against jwtSecret; RS256 tokens resolve their
// key through the JWKS client when one is configured.
func Middleware(jwtSecret string, jwksClient *auth.JWKSClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") || len(strings.TrimSpace(authHeader)) <= len("Bearer ") {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			var claims *auth.Claims
			var err error

			if jwksClient != nil {
				header, headerErr := auth.ParseHeader(token)
				if headerErr != nil {
					http.Error(w, "invalid token header", http.StatusUnauthorized)
					return
				}
				if header.Alg == "RS256" && header.Kid != "" {
					pub, keyErr := jwksClient.Get(header.Kid)
					if keyErr != nil {
						http.Error(w, "invalid token key", http.StatusUnauthorized)
						return
					}
					claims, err = auth.VerifyRS256(token, pub)
				} else {
					claims, err = auth.ParseAndVerifyHS256(token, jwtSecret)
				}
			} else {
				claims, err = auth.ParseAndVerifyHS256(token, jwtSecret)
			}
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.TenantID == "" {
				http.Error(w, "token missing tenant", http.StatusUnauthorized)
				return
			}

			id := Identity{
				ActorID:  claims.Sub,
				TenantID: claims.TenantID,
				Role:     claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(ContextWith(r.Context(), id)))
		})
	}
}

// RequireRole rejects callers whose role is not in roles with a 403.
// It assumes Middleware already ran.
func RequireRole(next http.Handler, roles ...string) http.Handler {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
