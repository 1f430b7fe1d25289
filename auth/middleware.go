// Package auth, as part of the authentication module.
// This file, `middleware.go`, defines the request interceptors guarding
// protected routes. A request passes through up to two of them: the
// authentication middleware (extract bearer credential → verify signature and
// expiry → resolve the principal → attach it to the context) and, where the
// route declares one, the role allow-list check. Every failure is terminal
// and fail-closed; success is a plain pass-through with the principal in the
// request context and no other side effect.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/config"
)

// PrincipalStore resolves a verified credential's subject id to a principal.
// The auth Service implements it; tests substitute a fake.
type PrincipalStore interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

// Middleware returns the authentication interceptor. It conforms to the
// standard `func(next http.Handler) http.Handler` middleware shape chi expects,
// like the `isUserAuthenticated` guard of the original Express routes.
func Middleware(cfg *config.AuthConfig, store PrincipalStore, rsp *apperror.Responder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				rsp.WriteError(w, r, apperror.NewAuthError("user needs to be logged in to do this", nil))
				return
			}

			// The Authorization header must be in the format "Bearer {token}".
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				rsp.WriteError(w, r, apperror.NewAuthError("authorization header format must be Bearer {token}", nil))
				return
			}

			claims, err := verifyToken(parts[1], cfg)
			if err != nil {
				rsp.WriteError(w, r, err)
				return
			}

			// The signature may be valid while the account no longer exists
			// (deleted after issuance); that is still an authentication
			// failure, not a 404.
			user, err := store.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if apperror.IsNotFound(err) {
					rsp.WriteError(w, r, apperror.NewAuthError("the user belonging to this token no longer exists", nil))
					return
				}
				rsp.WriteError(w, r, err)
				return
			}

			// Attach the resolved principal and continue down the chain.
			ctx := NewContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles returns the role allow-list interceptor: the resolved
// principal's role must be a member of the declared set. Mount it after
// Middleware; a missing principal here is a wiring bug and is reported as an
// authentication error rather than letting the request through.
func RequireRoles(rsp *apperror.Responder, roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				rsp.WriteError(w, r, apperror.NewAuthError("no authenticated user in request context", nil))
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				rsp.WriteError(w, r, apperror.NewUnauthorizedError(
					fmt.Sprintf("role %s is not allowed to do this", user.Role), nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
