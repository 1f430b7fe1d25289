// Package auth, as part of the authentication module.
// This file, `context.go`, deals with carrying the resolved principal through
// the request-scoped context.Context. The middleware resolves the bearer
// credential into a *User and stores it here; handlers downstream read it
// back without touching the database again.
package auth

import (
	"context"
)

// `contextKey` is a custom type for context keys. Using a custom type prevents
// collisions with context keys defined in other packages. It's a common Go idiom.
type contextKey string

const (
	// userContextKey is the key under which the authenticated principal is stored.
	userContextKey contextKey = "auth_user"
)

// NewContextWithUser returns a child context carrying the resolved principal.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the principal stored by the middleware.
// The second return value indicates whether a principal was present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
